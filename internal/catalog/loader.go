package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/card-binder/internal/scryfall"
)

// PageFetcher retrieves paginated search results. *scryfall.Client
// implements it.
type PageFetcher interface {
	SetPrintsURL(setCode string) string
	SearchPage(ctx context.Context, pageURL string) (*scryfall.SearchResult, error)
}

// LoadError reports which set and page broke a catalog load.
type LoadError struct {
	SetCode string
	Page    int
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load set %q page %d: %v", e.SetCode, e.Page, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader fetches every printing of a list of sets.
type Loader struct {
	fetcher PageFetcher
	logger  *zap.Logger
}

// NewLoader creates a Loader backed by the given fetcher.
func NewLoader(fetcher PageFetcher, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// Load fetches all sets concurrently and returns their cards concatenated in
// setCodes order. Pagination inside one set is sequential because each page
// names its successor. The first failure cancels the remaining sets and no
// partial catalog is returned. Cards printed in more than one requested set
// appear once per set.
func (l *Loader) Load(ctx context.Context, setCodes []string) ([]Card, error) {
	if len(setCodes) == 0 {
		return nil, errors.New("no set codes to load")
	}

	runs := make([][]Card, len(setCodes))
	g, gctx := errgroup.WithContext(ctx)

	for i, code := range setCodes {
		g.Go(func() error {
			cards, err := l.loadSet(gctx, code)
			if err != nil {
				return err
			}
			runs[i] = cards
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.logger.Warn("catalog load failed", zap.Error(err))
		return nil, err
	}

	total := 0
	for _, run := range runs {
		total += len(run)
	}

	cards := make([]Card, 0, total)
	for _, run := range runs {
		cards = append(cards, run...)
	}

	l.logger.Info("catalog loaded",
		zap.Strings("sets", setCodes),
		zap.Int("cards", len(cards)))

	return cards, nil
}

func (l *Loader) loadSet(ctx context.Context, setCode string) ([]Card, error) {
	var cards []Card
	pageURL := l.fetcher.SetPrintsURL(setCode)

	for page := 1; pageURL != ""; page++ {
		result, err := l.fetcher.SearchPage(ctx, pageURL)
		if err != nil {
			return nil, &LoadError{SetCode: setCode, Page: page, Err: err}
		}

		for _, sc := range result.Data {
			cards = append(cards, fromScryfall(sc))
		}

		l.logger.Debug("fetched catalog page",
			zap.String("set", setCode),
			zap.Int("page", page),
			zap.Int("cards", len(result.Data)))

		pageURL = ""
		if result.HasMore {
			pageURL = result.NextPage
		}
	}

	return cards, nil
}
