package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ramonehamilton/card-binder/internal/browser"
	"github.com/ramonehamilton/card-binder/internal/catalog"
	"github.com/ramonehamilton/card-binder/internal/ownership"
)

type staticLoader []catalog.Card

func (l staticLoader) Load(context.Context, []string) ([]catalog.Card, error) {
	return l, nil
}

func TestBrowserObserver_NilHub(t *testing.T) {
	observer := NewBrowserObserver(nil, nil)
	// Must not panic.
	observer.OnEvent(browser.Event{Type: browser.EventStateChanged})
}

func TestBrowserObserver_ForwardsBrowserEvents(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()
	conn := dial(t, server)
	defer conn.Close()
	waitForClients(t, hub, 1)

	ctx := context.Background()
	store, _ := ownership.Open(ctx, ownership.NewMemoryBackend(), nil)
	b := browser.New(staticLoader{{ID: "a", Name: "Cloud", Rarity: "rare"}}, []string{"fin"}, store, nil)
	NewBrowserObserver(hub, nil).Attach(b)

	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if state := b.Wait(waitCtx); state != browser.StateReady {
		t.Fatalf("Expected ready, got %s", state)
	}

	if ev := readEvent(t, conn); ev.Type != browser.EventStateChanged {
		t.Fatalf("Expected loading event, got %s", ev.Type)
	}
	if ev := readEvent(t, conn); ev.Type != browser.EventStateChanged {
		t.Fatalf("Expected ready event, got %s", ev.Type)
	}

	if _, err := b.Toggle(ctx, "a"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	ev := readEvent(t, conn)
	if ev.Type != browser.EventOwnershipToggle {
		t.Fatalf("Expected toggle event, got %s", ev.Type)
	}
	data, ok := ev.Data.(map[string]interface{})
	if !ok || data["cardId"] != "a" || data["owned"] != true {
		t.Errorf("Unexpected toggle payload %v", ev.Data)
	}
}
