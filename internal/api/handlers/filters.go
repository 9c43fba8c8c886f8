package handlers

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/ramonehamilton/card-binder/internal/browser"
)

// Query parameters shared by the page and the JSON API.
const (
	paramSearch  = "q"
	paramOwned   = "owned"
	paramRarity  = "rarity"
	paramSet     = "set"
	paramFlip    = "flip"
	paramCard    = "card"
	paramFlipped = "flipped"
)

// parseFilters reads the four grid filters from a query string. Missing
// parameters mean "all".
func parseFilters(q url.Values) (browser.Filters, error) {
	ownership, err := browser.ParseOwnershipFilter(q.Get(paramOwned))
	if err != nil {
		return browser.Filters{}, fmt.Errorf("invalid %s parameter: %w", paramOwned, err)
	}

	return browser.Filters{
		Search:    q.Get(paramSearch),
		Ownership: ownership,
		Rarity:    browser.ParseChoice(q.Get(paramRarity)),
		Set:       browser.ParseChoice(q.Get(paramSet)),
	}, nil
}

// parseUIState reads filters, flipped cards and the open detail view.
func parseUIState(q url.Values) (browser.UIState, error) {
	filters, err := parseFilters(q)
	if err != nil {
		return browser.UIState{}, err
	}

	state := browser.UIState{Filters: filters, Selected: q.Get(paramCard)}
	for _, id := range q[paramFlip] {
		if id != "" && !state.IsFlipped(id) {
			state.Flip(id)
		}
	}
	return state, nil
}

// encodeUIState is the inverse of parseUIState. Default values are left
// out so plain URLs stay plain.
func encodeUIState(s browser.UIState) url.Values {
	v := url.Values{}
	if s.Filters.Search != "" {
		v.Set(paramSearch, s.Filters.Search)
	}
	if s.Filters.Ownership != browser.OwnershipAll {
		v.Set(paramOwned, s.Filters.Ownership.String())
	}
	if !s.Filters.Rarity.IsAll() {
		v.Set(paramRarity, s.Filters.Rarity.Value())
	}
	if !s.Filters.Set.IsAll() {
		v.Set(paramSet, s.Filters.Set.Value())
	}

	flipped := make([]string, 0, len(s.Flipped))
	for id, on := range s.Flipped {
		if on {
			flipped = append(flipped, id)
		}
	}
	sort.Strings(flipped)
	for _, id := range flipped {
		v.Add(paramFlip, id)
	}

	if s.Selected != "" {
		v.Set(paramCard, s.Selected)
	}
	return v
}

// cloneUIState copies s so that link builders can modify the copy.
func cloneUIState(s browser.UIState) browser.UIState {
	c := s
	c.Flipped = make(map[string]bool, len(s.Flipped))
	for id, on := range s.Flipped {
		c.Flipped[id] = on
	}
	return c
}

// pageURL returns the index URL for s.
func pageURL(s browser.UIState) string {
	q := encodeUIState(s).Encode()
	if q == "" {
		return "/"
	}
	return "/?" + q
}
