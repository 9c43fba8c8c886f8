package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/browser"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("").Funcs(template.FuncMap{
	"imageSrc": imageSrc,
}).ParseFS(templateFS, "templates/*.html"))

// imageSrc routes remote images through the proxy. Local paths such as the
// placeholder are returned unchanged.
func imageSrc(ref string) string {
	if ref == "" {
		return browser.PlaceholderImage
	}
	if strings.HasPrefix(ref, "/") {
		return ref
	}
	return "/images?url=" + url.QueryEscape(ref)
}

// PageHandler renders the card browser page. All transient UI state lives
// in the query string, so every control is a link or a form.
type PageHandler struct {
	browser *browser.Browser
	loadCtx context.Context
	logger  *zap.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(loadCtx context.Context, b *browser.Browser, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{browser: b, loadCtx: loadCtx, logger: logger}
}

type filterForm struct {
	Search string
	Owned  string
	Rarity string
	Set    string
}

type cardView struct {
	ID              string
	Name            string
	SetName         string
	CollectorNumber string
	Image           string
	Owned           bool
	CanFlip         bool
	Flipped         bool
	FlipURL         string
	DetailURL       string
	ToggleAction    string
}

type bucketView struct {
	Header string
	Cards  []cardView
}

type detailView struct {
	browser.Detail
	CloseURL string
}

type pageData struct {
	Status   browser.Status
	Loading  bool
	Failed   bool
	Filters  filterForm
	Flipped  []string
	Options  browser.Options
	Buckets  []bucketView
	Total    int
	Unlisted int
	Detail   *detailView
}

// Index renders the page for the UI state in the query string.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	state, err := parseUIState(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := pageData{
		Status: h.browser.Status(),
		Filters: filterForm{
			Search: state.Filters.Search,
			Owned:  state.Filters.Ownership.String(),
			Rarity: state.Filters.Rarity.String(),
			Set:    state.Filters.Set.String(),
		},
		Flipped: encodeUIState(browser.UIState{Flipped: state.Flipped})[paramFlip],
	}

	switch data.Status.State {
	case browser.StateIdle, browser.StateLoading:
		data.Loading = true
	case browser.StateLoadFailed:
		data.Failed = true
	case browser.StateReady:
		if err := h.fillReady(&data, state); err != nil {
			h.logger.Error("failed to build page", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "index.html", data); err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *PageHandler) fillReady(data *pageData, state browser.UIState) error {
	view, err := h.browser.View(state.Filters)
	if err != nil {
		return err
	}
	opts, err := h.browser.Options()
	if err != nil {
		return err
	}

	data.Options = opts
	data.Total = view.CatalogSize
	data.Unlisted = view.Unlisted

	for _, bucket := range view.Buckets {
		bv := bucketView{Header: bucket.Header(), Cards: make([]cardView, 0, len(bucket.Cards))}
		for _, card := range bucket.Cards {
			flipped := state.IsFlipped(card.ID)

			flip := cloneUIState(state)
			flip.Flip(card.ID)
			open := cloneUIState(state)
			open.Select(card.ID)

			bv.Cards = append(bv.Cards, cardView{
				ID:              card.ID,
				Name:            card.Name,
				SetName:         card.SetName,
				CollectorNumber: card.CollectorNumber,
				Image:           browser.ImageFor(card, flipped),
				Owned:           h.browser.IsOwned(card.ID),
				CanFlip:         browser.CanFlip(card),
				Flipped:         flipped,
				FlipURL:         pageURL(flip),
				DetailURL:       pageURL(open),
				ToggleAction:    "/cards/" + url.PathEscape(card.ID) + "/toggle?" + encodeUIState(state).Encode(),
			})
		}
		data.Buckets = append(data.Buckets, bv)
	}

	if state.Selected != "" {
		detail, err := h.browser.Detail(state.Selected, state.IsFlipped(state.Selected))
		if err == nil {
			closed := cloneUIState(state)
			closed.CloseDetail()
			data.Detail = &detailView{Detail: detail, CloseURL: pageURL(closed)}
		} else {
			h.logger.Debug("ignoring detail for unknown card", zap.String("card", state.Selected))
		}
	}

	return nil
}

// ToggleCard flips ownership from the page form and redirects back to the
// same view.
func (h *PageHandler) ToggleCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.browser.Toggle(r.Context(), id); err != nil {
		h.logger.Warn("toggle failed", zap.String("card", id), zap.Error(err))
		writeBrowserError(w, err)
		return
	}

	target := "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RetryLoad restarts a failed catalog load from the page.
func (h *PageHandler) RetryLoad(w http.ResponseWriter, r *http.Request) {
	if err := h.browser.Retry(h.loadCtx); err != nil {
		h.logger.Warn("retry rejected", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
