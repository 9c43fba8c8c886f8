package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/api"
	"github.com/ramonehamilton/card-binder/internal/imagecache"
	"github.com/ramonehamilton/card-binder/internal/metrics"
)

func newServeCmd() *cobra.Command {
	var (
		port        int
		openBrowser bool
		noImages    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the binder page",
		Long: `Starts the local web server, begins loading the catalog and serves the
card grid at http://127.0.0.1:<port>/ until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("open") {
				cfg.Server.OpenBrowser = openBrowser
			}
			return runServe(cmd.Context(), noImages)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Listen port (overrides server.port)")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "Open the page in the default browser")
	cmd.Flags().BoolVar(&noImages, "no-image-cache", false, "Redirect image requests instead of caching them")

	return cmd
}

func runServe(parent context.Context, noImages bool) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("error closing database", zap.Error(err))
		}
	}()

	m := metrics.New()
	store := openOwnership(ctx, svc)
	b, err := newBrowser(cfg, store, m)
	if err != nil {
		return err
	}

	var images *imagecache.Cache
	if !noImages {
		images, err = newImageCache(m)
		if err != nil {
			return err
		}
	}

	server := api.NewServer(ctx, &api.Config{
		Port:        cfg.Server.Port,
		OpenBrowser: cfg.Server.OpenBrowser,
		Metrics:     m,
	}, b, images, logger.Named("api"))

	if err := server.Start(); err != nil {
		return err
	}
	if err := b.Start(ctx); err != nil {
		return err
	}

	fmt.Printf("Binder running at http://%s/\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newImageCache(m *metrics.Metrics) (*imagecache.Cache, error) {
	dir, err := cfg.ImageCacheDir()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.ImageTimeout()
	if err != nil {
		return nil, fmt.Errorf("images.timeout: %w", err)
	}

	return imagecache.New(imagecache.Options{
		CacheDir: dir,
		MaxSize:  int64(cfg.Images.MaxSizeMB) * 1024 * 1024,
		Timeout:  timeout,
		Logger:   logger.Named("images"),
		Metrics:  m,
	})
}
