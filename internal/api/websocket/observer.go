package websocket

import (
	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/browser"
)

// BrowserObserver forwards browser events to websocket clients.
type BrowserObserver struct {
	hub    *Hub
	logger *zap.Logger
}

// NewBrowserObserver creates an observer for hub.
func NewBrowserObserver(hub *Hub, logger *zap.Logger) *BrowserObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserObserver{hub: hub, logger: logger}
}

// OnEvent broadcasts ev. It has the signature expected by
// (*browser.Browser).Subscribe.
func (o *BrowserObserver) OnEvent(ev browser.Event) {
	if o.hub == nil {
		o.logger.Warn("cannot emit event: hub is nil", zap.String("type", ev.Type))
		return
	}

	if !o.hub.BroadcastEvent(Event{Type: ev.Type, Data: ev.Data}) {
		o.logger.Debug("event not sent, hub stopped", zap.String("type", ev.Type))
	}
}

// Attach subscribes the observer to b. Pages that connect later still get
// the current load state.
func (o *BrowserObserver) Attach(b *browser.Browser) {
	if o.hub != nil {
		o.hub.Retain(browser.EventStateChanged)
	}
	b.Subscribe(o.OnEvent)
}
