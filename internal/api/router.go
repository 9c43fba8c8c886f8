package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/card-binder/internal/api/handlers"
	"github.com/ramonehamilton/card-binder/internal/api/response"
)

// setupRoutes configures the page, the JSON API and the event feed.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ws", s.wsHub.ServeWs)

	// The images handler takes an interface; a nil *Cache must stay nil.
	var fetcher handlers.ImageFetcher
	var admin handlers.ImageCacheAdmin
	if s.images != nil {
		fetcher = s.images
		admin = s.images
	}
	imageHandler := handlers.NewImageHandler(fetcher, s.hosts, s.logger.Named("images"))
	s.router.Get("/images", imageHandler.GetImage)
	s.router.Get("/static/placeholder.svg", imageHandler.ServePlaceholder)

	// HTML page; forms post here and are redirected back to the page.
	page := handlers.NewPageHandler(s.loadCtx, s.browser, s.logger.Named("page"))
	s.router.Get("/", page.Index)
	s.router.Post("/cards/{id}/toggle", page.ToggleCard)
	s.router.Post("/catalog/retry", page.RetryLoad)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)

		catalogHandler := handlers.NewCatalogHandler(s.loadCtx, s.browser)
		r.Get("/state", catalogHandler.GetState)
		r.Get("/options", catalogHandler.GetOptions)
		r.Post("/catalog/retry", catalogHandler.Retry)

		cardHandler := handlers.NewCardHandler(s.browser)
		r.Get("/view", cardHandler.GetView)
		r.Get("/ownership", cardHandler.GetOwnership)
		r.Route("/cards/{id}", func(r chi.Router) {
			r.Get("/", cardHandler.GetCard)
			r.Post("/toggle", cardHandler.ToggleOwnership)
		})

		cacheHandler := handlers.NewImageCacheHandler(admin)
		r.Get("/images/stats", cacheHandler.GetStats)
		r.Post("/images/clear", cacheHandler.Clear)

		r.Get("/metrics", handlers.NewMetricsHandler(s.metrics).GetMetrics)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "card-binder",
		"catalog": s.browser.State().String(),
	})
}
