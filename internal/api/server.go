// Package api serves the card browser page, its JSON API and the event feed.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/api/handlers"
	"github.com/ramonehamilton/card-binder/internal/api/websocket"
	"github.com/ramonehamilton/card-binder/internal/browser"
	"github.com/ramonehamilton/card-binder/internal/imagecache"
	"github.com/ramonehamilton/card-binder/internal/metrics"
)

// Server is the local HTTP server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	addr       string

	openBrowser bool

	wsHub   *websocket.Hub
	browser *browser.Browser
	images  *imagecache.Cache
	hosts   []string
	metrics *metrics.Metrics

	// loadCtx bounds catalog loads started from requests.
	loadCtx context.Context
	logger  *zap.Logger
}

// Config holds configuration for the server.
type Config struct {
	Port        int
	OpenBrowser bool     // Whether to open the page on startup
	ImageHosts  []string // Hosts the image proxy may fetch from
	Metrics     *metrics.Metrics
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:       8080,
		ImageHosts: handlers.DefaultImageHosts,
	}
}

// NewServer creates a server for b. images may be nil, in which case image
// requests are redirected to their origin. ctx bounds loads retried through
// the server.
func NewServer(ctx context.Context, cfg *Config, b *browser.Browser, images *imagecache.Cache, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	hosts := cfg.ImageHosts
	if len(hosts) == 0 {
		hosts = handlers.DefaultImageHosts
	}

	s := &Server{
		router:      chi.NewRouter(),
		port:        cfg.Port,
		openBrowser: cfg.OpenBrowser,
		wsHub:       websocket.NewHub(logger.Named("ws")),
		browser:     b,
		images:      images,
		hosts:       hosts,
		metrics:     cfg.Metrics,
		loadCtx:     ctx,
		logger:      logger,
	}

	websocket.NewBrowserObserver(s.wsHub, logger.Named("ws")).Attach(b)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&zapLogFormatter{logger: s.logger.Named("http")}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the port and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	s.addr = ln.Addr().String()

	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("server listening", zap.String("addr", s.addr))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", zap.Error(err))
		}
	}()

	if s.openBrowser {
		go func() {
			// Give the server a moment to accept connections.
			time.Sleep(500 * time.Millisecond)
			pageURL := "http://" + s.addr + "/"
			if err := openBrowser(pageURL); err != nil {
				s.logger.Warn("failed to open browser", zap.Error(err))
			} else {
				s.logger.Info("opened browser", zap.String("url", pageURL))
			}
		}()
	}

	return nil
}

// openBrowser opens the specified URL in the default browser.
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// Shutdown stops the event feed and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the bound address after Start.
func (s *Server) Addr() string {
	return s.addr
}

// WebSocketHub returns the event hub.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
