package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/card-binder/internal/browser"
	"github.com/ramonehamilton/card-binder/internal/catalog"
	"github.com/ramonehamilton/card-binder/internal/ownership"
)

// scriptedLoader returns errs[i] on call i, then the cards.
type scriptedLoader struct {
	mu    sync.Mutex
	cards []catalog.Card
	errs  []error
	calls int
}

func (l *scriptedLoader) Load(context.Context, []string) ([]catalog.Card, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.calls
	l.calls++
	if i < len(l.errs) && l.errs[i] != nil {
		return nil, l.errs[i]
	}
	return l.cards, nil
}

// blockingLoader never finishes until ctx is cancelled.
type blockingLoader struct{}

func (blockingLoader) Load(ctx context.Context, _ []string) ([]catalog.Card, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testCards() []catalog.Card {
	return []catalog.Card{
		{ID: "c1", Name: "Moogle", SetName: "Final Fantasy", SetCode: "fin", CollectorNumber: "12", Rarity: "common", Layout: "normal",
			ImageURL: "https://cards.scryfall.io/normal/front/c1.jpg", TypeLine: "Creature", ManaCost: "{W}", OracleText: "Flying {T}: Draw."},
		{ID: "r1", Name: "Cloud Strife", SetName: "Final Fantasy", SetCode: "fin", CollectorNumber: "5", Rarity: "rare", Layout: "transform",
			Faces: []catalog.Face{
				{Name: "Cloud", ImageURL: "https://cards.scryfall.io/normal/front/r1.jpg", TypeLine: "Creature", ManaCost: "{1}{R}"},
				{Name: "Cloud, Ex-SOLDIER", ImageURL: "https://cards.scryfall.io/normal/back/r1.jpg", TypeLine: "Creature"},
			}},
		{ID: "m1", Name: "Sephiroth", SetName: "Final Fantasy Commander", SetCode: "fic", CollectorNumber: "1", Rarity: "mythic", Layout: "normal"},
	}
}

func newTestBrowser(t *testing.T, loader browser.CatalogLoader) (*browser.Browser, *ownership.MemoryBackend) {
	t.Helper()
	backend := ownership.NewMemoryBackend()
	store, _ := ownership.Open(context.Background(), backend, nil)
	return browser.New(loader, []string{"fin", "fic"}, store, nil), backend
}

func startAndWait(t *testing.T, b *browser.Browser, want browser.State) {
	t.Helper()
	require.NoError(t, b.Start(context.Background()))
	waitFor(t, b, want)
}

func waitFor(t *testing.T, b *browser.Browser, want browser.State) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.Equal(t, want, b.Wait(ctx))
}

func readyBrowser(t *testing.T) (*browser.Browser, *ownership.MemoryBackend) {
	t.Helper()
	b, backend := newTestBrowser(t, &scriptedLoader{cards: testCards()})
	startAndWait(t, b, browser.StateReady)
	return b, backend
}

func failedBrowser(t *testing.T) (*browser.Browser, *scriptedLoader) {
	t.Helper()
	loader := &scriptedLoader{cards: testCards(), errs: []error{errors.New("scryfall down")}}
	b, _ := newTestBrowser(t, loader)
	startAndWait(t, b, browser.StateLoadFailed)
	return b, loader
}
