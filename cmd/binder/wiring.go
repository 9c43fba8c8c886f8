package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/browser"
	"github.com/ramonehamilton/card-binder/internal/catalog"
	"github.com/ramonehamilton/card-binder/internal/config"
	"github.com/ramonehamilton/card-binder/internal/metrics"
	"github.com/ramonehamilton/card-binder/internal/ownership"
	"github.com/ramonehamilton/card-binder/internal/scryfall"
	"github.com/ramonehamilton/card-binder/internal/storage"
)

// openStorage opens the ownership database, migrating it if needed.
func openStorage(cfg *config.Config) (*storage.Service, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}

	dbConfig := storage.DefaultConfig(path)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, err
	}

	logger.Debug("database opened", zap.String("path", path))
	return storage.NewService(db), nil
}

// openOwnership loads the ownership map from the database.
func openOwnership(ctx context.Context, svc *storage.Service) *ownership.Store {
	store, result := ownership.Open(ctx, ownership.NewKeyValueBackend(svc.KeyValue()), logger.Named("ownership"))
	switch result.Source {
	case ownership.LoadedFallback:
		logger.Warn("stored ownership could not be read, starting empty", zap.Error(result.Err))
	default:
		logger.Debug("ownership loaded", zap.Stringer("source", result.Source), zap.Int("entries", result.Cards))
	}
	return store
}

// newLoader builds the catalog loader from the [catalog] section.
func newLoader(cfg *config.Config, m *metrics.Metrics) (*catalog.Loader, error) {
	pageTimeout, err := cfg.PageTimeout()
	if err != nil {
		return nil, fmt.Errorf("catalog.page_timeout: %w", err)
	}
	rateLimit, err := cfg.RateLimit()
	if err != nil {
		return nil, fmt.Errorf("catalog.rate_limit: %w", err)
	}

	client := scryfall.NewClient(scryfall.Options{
		BaseURL:     cfg.Catalog.APIBaseURL,
		UserAgent:   cfg.Catalog.UserAgent,
		RateLimit:   rateLimit,
		PageTimeout: pageTimeout,
		Logger:      logger.Named("scryfall"),
		Metrics:     m,
	})
	return catalog.NewLoader(client, logger.Named("catalog")), nil
}

// newBrowser wires the loader and the ownership store. m may be nil.
func newBrowser(cfg *config.Config, store *ownership.Store, m *metrics.Metrics) (*browser.Browser, error) {
	loader, err := newLoader(cfg, m)
	if err != nil {
		return nil, err
	}
	return browser.New(loader, cfg.Catalog.SetCodes, store, logger.Named("browser")), nil
}
