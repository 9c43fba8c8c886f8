package handlers

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/api/response"
	"github.com/ramonehamilton/card-binder/internal/imagecache"
)

//go:embed static/placeholder.svg
var staticFS embed.FS

// DefaultImageHosts are the hosts the image proxy fetches from.
var DefaultImageHosts = []string{"cards.scryfall.io", "svgs.scryfall.io"}

// ImageFetcher returns a local file for a remote image. *imagecache.Cache
// implements it.
type ImageFetcher interface {
	Get(ctx context.Context, imageURL string) (string, error)
}

// ImageHandler proxies card images and mana symbols through the local
// cache. Anything that cannot be fetched is answered with the placeholder.
type ImageHandler struct {
	fetcher ImageFetcher
	hosts   map[string]bool
	logger  *zap.Logger
}

// NewImageHandler creates a new ImageHandler. A nil fetcher redirects to
// the remote URL instead of caching.
func NewImageHandler(fetcher ImageFetcher, hosts []string, logger *zap.Logger) *ImageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		allowed[h] = true
	}
	return &ImageHandler{fetcher: fetcher, hosts: allowed, logger: logger}
}

// GetImage serves /images?url=<remote url>.
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		h.ServePlaceholder(w, r)
		return
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		response.BadRequest(w, errors.New("invalid image url"))
		return
	}
	if !h.hosts[u.Host] {
		response.BadRequest(w, errors.New("image host not allowed"))
		return
	}

	if h.fetcher == nil {
		http.Redirect(w, r, u.String(), http.StatusFound)
		return
	}

	path, err := h.fetcher.Get(r.Context(), u.String())
	if err != nil {
		h.logger.Warn("image unavailable, serving placeholder", zap.String("url", raw), zap.Error(err))
		h.ServePlaceholder(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

// ServePlaceholder writes the placeholder card image.
func (h *ImageHandler) ServePlaceholder(w http.ResponseWriter, r *http.Request) {
	data, err := staticFS.ReadFile("static/placeholder.svg")
	if err != nil {
		response.InternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ImageCacheAdmin exposes cache maintenance. *imagecache.Cache implements it.
type ImageCacheAdmin interface {
	Stats() imagecache.Stats
	Clear() error
}

// ImageCacheHandler handles image cache maintenance requests.
type ImageCacheHandler struct {
	cache ImageCacheAdmin
}

// NewImageCacheHandler creates a new ImageCacheHandler.
func NewImageCacheHandler(cache ImageCacheAdmin) *ImageCacheHandler {
	return &ImageCacheHandler{cache: cache}
}

// GetStats returns cache usage.
func (h *ImageCacheHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		response.ServiceUnavailable(w, errors.New("image cache disabled"))
		return
	}
	response.Success(w, h.cache.Stats())
}

// Clear empties the cache.
func (h *ImageCacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		response.ServiceUnavailable(w, errors.New("image cache disabled"))
		return
	}
	if err := h.cache.Clear(); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, h.cache.Stats())
}
