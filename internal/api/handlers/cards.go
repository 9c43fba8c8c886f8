package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/card-binder/internal/api/response"
	"github.com/ramonehamilton/card-binder/internal/browser"
	"github.com/ramonehamilton/card-binder/internal/catalog"
)

// CardHandler handles grid, detail and ownership requests.
type CardHandler struct {
	browser *browser.Browser
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(b *browser.Browser) *CardHandler {
	return &CardHandler{browser: b}
}

// CardResponse is a card with its per-user state.
type CardResponse struct {
	Card    catalog.Card   `json:"card"`
	Owned   bool           `json:"owned"`
	CanFlip bool           `json:"canFlip"`
	Image   string         `json:"image"`
	Detail  browser.Detail `json:"detail"`
}

// GetView returns the grouped grid for the filters in the query string.
func (h *CardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	view, err := h.browser.View(filters)
	if err != nil {
		writeBrowserError(w, err)
		return
	}

	response.Success(w, view)
}

// GetCard returns one card. ?flipped=true selects the back face for cards
// shown with a single image.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	flipped := false
	if raw := r.URL.Query().Get(paramFlipped); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, err)
			return
		}
		flipped = v
	}

	card, err := h.browser.Card(id)
	if err != nil {
		writeBrowserError(w, err)
		return
	}

	response.Success(w, CardResponse{
		Card:    card,
		Owned:   h.browser.IsOwned(id),
		CanFlip: browser.CanFlip(card),
		Image:   browser.ImageFor(card, flipped),
		Detail:  browser.DetailFor(card, flipped),
	})
}

// ToggleOwnership flips the owned flag of a card.
func (h *CardHandler) ToggleOwnership(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	owned, err := h.browser.Toggle(r.Context(), id)
	if err != nil {
		writeBrowserError(w, err)
		return
	}

	response.Success(w, browser.ToggleResult{CardID: id, Owned: owned})
}

// GetOwnership returns the persisted ownership map.
func (h *CardHandler) GetOwnership(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.browser.Ownership())
}
