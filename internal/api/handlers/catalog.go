package handlers

import (
	"context"
	"net/http"

	"github.com/ramonehamilton/card-binder/internal/api/response"
	"github.com/ramonehamilton/card-binder/internal/browser"
)

// CatalogHandler handles catalog lifecycle requests.
type CatalogHandler struct {
	browser *browser.Browser

	// loadCtx outlives requests; a retried load must not be cancelled when
	// the request that triggered it returns.
	loadCtx context.Context
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(loadCtx context.Context, b *browser.Browser) *CatalogHandler {
	return &CatalogHandler{browser: b, loadCtx: loadCtx}
}

// GetState returns the load lifecycle state.
func (h *CatalogHandler) GetState(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.browser.Status())
}

// GetOptions returns the rarity and set selector values.
func (h *CatalogHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.browser.Options()
	if err != nil {
		writeBrowserError(w, err)
		return
	}

	response.Success(w, opts)
}

// Retry restarts a failed load.
func (h *CatalogHandler) Retry(w http.ResponseWriter, r *http.Request) {
	if err := h.browser.Retry(h.loadCtx); err != nil {
		writeBrowserError(w, err)
		return
	}

	response.Accepted(w, h.browser.Status())
}
