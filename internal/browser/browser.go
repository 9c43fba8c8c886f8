// Package browser holds the card browser: catalog load lifecycle, the
// derived grouped view, ownership toggles and detail views.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/catalog"
	"github.com/ramonehamilton/card-binder/internal/ownership"
)

// State is the load lifecycle of the browser.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLoadFailed:
		return "load_failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotReady is returned by operations that need the loaded catalog.
	ErrNotReady = errors.New("catalog not loaded")

	// ErrUnknownCard is returned for ids that are not in the catalog.
	ErrUnknownCard = errors.New("unknown card")

	// ErrInvalidTransition is returned by Start and Retry when the current
	// state does not allow a load.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Event types published to subscribers.
const (
	EventStateChanged    = "catalog.state"
	EventOwnershipToggle = "ownership.toggled"
)

// Event is a change notification.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Status is a snapshot of the load lifecycle.
type Status struct {
	State State  `json:"-"`
	Name  string `json:"state"`
	Cards int    `json:"cards"`
	Error string `json:"error,omitempty"`
}

// ToggleResult is the payload of an ownership toggle event.
type ToggleResult struct {
	CardID string `json:"cardId"`
	Owned  bool   `json:"owned"`
}

// CatalogLoader loads the cards of a list of sets. *catalog.Loader
// implements it.
type CatalogLoader interface {
	Load(ctx context.Context, setCodes []string) ([]catalog.Card, error)
}

// Browser owns the catalog and ownership store for one session.
// The catalog is published once after a successful load and is read-only
// afterwards.
type Browser struct {
	loader   CatalogLoader
	setCodes []string
	owned    *ownership.Store
	logger   *zap.Logger

	mu      sync.RWMutex
	state   State
	cards   []catalog.Card
	byID    map[string]int
	options Options
	loadErr error
	done    chan struct{}

	subMu       sync.RWMutex
	subscribers []func(Event)
}

// New creates a browser in StateIdle.
func New(loader CatalogLoader, setCodes []string, owned *ownership.Store, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{
		loader:   loader,
		setCodes: append([]string(nil), setCodes...),
		owned:    owned,
		logger:   logger,
		state:    StateIdle,
		done:     make(chan struct{}),
	}
}

// Subscribe registers fn for every future event. fn is called synchronously
// from the goroutine that caused the event and must not block.
func (b *Browser) Subscribe(fn func(Event)) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

func (b *Browser) publish(ev Event) {
	b.subMu.RLock()
	subs := append([]func(Event){}, b.subscribers...)
	b.subMu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Start begins the catalog load in the background. It may only be called
// once, from StateIdle.
func (b *Browser) Start(ctx context.Context) error {
	return b.beginLoad(ctx, StateIdle)
}

// Retry reloads the catalog after a failed load.
func (b *Browser) Retry(ctx context.Context) error {
	return b.beginLoad(ctx, StateLoadFailed)
}

func (b *Browser) beginLoad(ctx context.Context, from State) error {
	b.mu.Lock()
	if b.state != from {
		current := b.state
		b.mu.Unlock()
		return fmt.Errorf("%w: cannot load from %s", ErrInvalidTransition, current)
	}
	b.state = StateLoading
	b.loadErr = nil
	b.done = make(chan struct{})
	done := b.done
	b.mu.Unlock()

	b.publish(Event{Type: EventStateChanged, Data: b.Status()})
	b.logger.Info("loading catalog", zap.Strings("sets", b.setCodes))

	go b.load(ctx, done)
	return nil
}

func (b *Browser) load(ctx context.Context, done chan struct{}) {
	defer close(done)

	cards, err := b.loader.Load(ctx, b.setCodes)

	b.mu.Lock()
	if err != nil {
		b.state = StateLoadFailed
		b.loadErr = err
	} else {
		b.state = StateReady
		b.cards = cards
		b.byID = make(map[string]int, len(cards))
		for i, c := range cards {
			if _, dup := b.byID[c.ID]; !dup {
				b.byID[c.ID] = i
			}
		}
		b.options = OptionsFor(cards)
	}
	b.mu.Unlock()

	if err != nil {
		b.logger.Error("catalog load failed", zap.Error(err))
	} else {
		unlisted := 0
		for _, c := range cards {
			if !isListedRarity(c.Rarity) {
				unlisted++
			}
		}
		if unlisted > 0 {
			b.logger.Warn("cards with unlisted rarities are hidden from the grid", zap.Int("cards", unlisted))
		}
	}

	b.publish(Event{Type: EventStateChanged, Data: b.Status()})
}

// Wait blocks until the current load attempt finishes or ctx is done, and
// returns the resulting state.
func (b *Browser) Wait(ctx context.Context) State {
	b.mu.RLock()
	done := b.done
	state := b.state
	b.mu.RUnlock()

	if state != StateLoading {
		return state
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
	return b.State()
}

// State returns the current lifecycle state.
func (b *Browser) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Status returns the current lifecycle snapshot.
func (b *Browser) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := Status{State: b.state, Name: b.state.String(), Cards: len(b.cards)}
	if b.loadErr != nil {
		st.Error = b.loadErr.Error()
	}
	return st
}

// View derives the grouped grid for f.
func (b *Browser) View(f Filters) (View, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state != StateReady {
		return View{}, ErrNotReady
	}
	return Derive(b.cards, b.owned, f), nil
}

// Options returns the selector values of the loaded catalog.
func (b *Browser) Options() (Options, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state != StateReady {
		return Options{}, ErrNotReady
	}
	return b.options, nil
}

// Card looks up a card by id.
func (b *Browser) Card(id string) (catalog.Card, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state != StateReady {
		return catalog.Card{}, ErrNotReady
	}
	idx, ok := b.byID[id]
	if !ok {
		return catalog.Card{}, fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	return b.cards[idx], nil
}

// Detail builds the zoom view of a card.
func (b *Browser) Detail(id string, flipped bool) (Detail, error) {
	card, err := b.Card(id)
	if err != nil {
		return Detail{}, err
	}
	return DetailFor(card, flipped), nil
}

// IsOwned reports the owned flag of a card.
func (b *Browser) IsOwned(id string) bool {
	return b.owned.IsOwned(id)
}

// Toggle flips the owned flag of a catalog card and persists it.
func (b *Browser) Toggle(ctx context.Context, id string) (bool, error) {
	if _, err := b.Card(id); err != nil {
		return false, err
	}

	owned, err := b.owned.Toggle(ctx, id)
	if err != nil {
		return owned, err
	}

	b.logger.Debug("ownership toggled", zap.String("card", id), zap.Bool("owned", owned))
	b.publish(Event{Type: EventOwnershipToggle, Data: ToggleResult{CardID: id, Owned: owned}})
	return owned, nil
}

// Ownership returns a copy of the persisted ownership map.
func (b *Browser) Ownership() map[string]bool {
	return b.owned.Snapshot()
}
