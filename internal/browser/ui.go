package browser

import (
	"github.com/ramonehamilton/card-binder/internal/catalog"
	"github.com/ramonehamilton/card-binder/internal/manatext"
)

// PlaceholderImage is served when a card or face has no usable image.
const PlaceholderImage = "/static/placeholder.svg"

// UIState is the transient state of one open page: filters, which cards are
// showing their back face, and which card is open in the detail view.
type UIState struct {
	Filters  Filters
	Flipped  map[string]bool
	Selected string
}

// IsFlipped reports whether the card shows its second face in the grid.
func (s UIState) IsFlipped(cardID string) bool {
	return s.Flipped[cardID]
}

// Flip toggles which face of cardID the grid shows.
func (s *UIState) Flip(cardID string) {
	if s.Flipped == nil {
		s.Flipped = make(map[string]bool)
	}
	if s.Flipped[cardID] {
		delete(s.Flipped, cardID)
		return
	}
	s.Flipped[cardID] = true
}

// Select opens the detail view for cardID, replacing any open one.
func (s *UIState) Select(cardID string) {
	s.Selected = cardID
}

// CloseDetail dismisses the detail view.
func (s *UIState) CloseDetail() {
	s.Selected = ""
}

// CanFlip reports whether the grid offers a flip control for the card.
func CanFlip(card catalog.Card) bool {
	return card.Layout == catalog.LayoutTransform && len(card.Faces) == 2
}

// ImageFor picks the grid image: the card's own image if it has one,
// otherwise face 1 when flipped and face 0 when not.
func ImageFor(card catalog.Card, flipped bool) string {
	if card.ImageURL != "" {
		return card.ImageURL
	}

	idx := 0
	if flipped {
		idx = 1
	}
	if idx < len(card.Faces) && card.Faces[idx].ImageURL != "" {
		return card.Faces[idx].ImageURL
	}
	return PlaceholderImage
}

// FaceDetail is one side in the detail view.
type FaceDetail struct {
	Name     string             `json:"name"`
	ImageURL string             `json:"imageUrl"`
	TypeLine string             `json:"typeLine"`
	ManaCost []manatext.Segment `json:"manaCost"`
	Oracle   []manatext.Segment `json:"oracle"`
}

// Detail is the content of the zoom view.
type Detail struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Faces []FaceDetail `json:"faces"`

	// SideBySide is set for transform cards, whose faces are shown together.
	SideBySide bool `json:"sideBySide"`
}

// DetailFor builds the zoom view. Transform cards show every face regardless
// of flipped; other cards show one image with the card-level text.
func DetailFor(card catalog.Card, flipped bool) Detail {
	d := Detail{ID: card.ID, Name: card.Name}

	if card.Layout == catalog.LayoutTransform && len(card.Faces) > 0 {
		d.SideBySide = true
		for _, f := range card.Faces {
			img := f.ImageURL
			if img == "" {
				img = PlaceholderImage
			}
			d.Faces = append(d.Faces, FaceDetail{
				Name:     f.Name,
				ImageURL: img,
				TypeLine: f.TypeLine,
				ManaCost: manatext.Render(f.ManaCost),
				Oracle:   manatext.Render(f.OracleText),
			})
		}
		return d
	}

	d.Faces = []FaceDetail{{
		Name:     card.Name,
		ImageURL: ImageFor(card, flipped),
		TypeLine: card.TypeLine,
		ManaCost: manatext.Render(card.ManaCost),
		Oracle:   manatext.Render(card.OracleText),
	}}
	return d
}
