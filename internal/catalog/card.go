// Package catalog loads the printings of a fixed list of sets and exposes
// them as immutable Card values.
package catalog

import "github.com/ramonehamilton/card-binder/internal/scryfall"

// LayoutTransform is the layout of double-faced cards that can be flipped.
const LayoutTransform = "transform"

// Card is one printing in the catalog. Cards are created once per load and
// never modified afterwards.
type Card struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SetName         string `json:"setName"`
	SetCode         string `json:"setCode"`
	CollectorNumber string `json:"collectorNumber"`
	Rarity          string `json:"rarity"`
	Layout          string `json:"layout"`
	ImageURL        string `json:"imageUrl,omitempty"`
	Faces           []Face `json:"faces,omitempty"`
	TypeLine        string `json:"typeLine,omitempty"`
	ManaCost        string `json:"manaCost,omitempty"`
	OracleText      string `json:"oracleText,omitempty"`
}

// Face is one printed side of a multi-faced card.
type Face struct {
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl,omitempty"`
	ManaCost   string `json:"manaCost,omitempty"`
	TypeLine   string `json:"typeLine,omitempty"`
	OracleText string `json:"oracleText,omitempty"`
}

// IsMultiFaced reports whether the card carries its own faces.
func (c Card) IsMultiFaced() bool {
	return len(c.Faces) > 0
}

// fromScryfall converts a search record into a catalog card.
func fromScryfall(sc scryfall.Card) Card {
	card := Card{
		ID:              sc.ID,
		Name:            sc.Name,
		SetName:         sc.SetName,
		SetCode:         sc.SetCode,
		CollectorNumber: sc.CollectorNumber,
		Rarity:          sc.Rarity,
		Layout:          sc.Layout,
		TypeLine:        sc.TypeLine,
		ManaCost:        sc.ManaCost,
		OracleText:      sc.OracleText,
	}
	if sc.ImageURIs != nil {
		card.ImageURL = sc.ImageURIs.Normal
	}

	if len(sc.CardFaces) > 0 {
		card.Faces = make([]Face, len(sc.CardFaces))
		for i, f := range sc.CardFaces {
			face := Face{
				Name:       f.Name,
				ManaCost:   f.ManaCost,
				TypeLine:   f.TypeLine,
				OracleText: f.OracleText,
			}
			if f.ImageURIs != nil {
				face.ImageURL = f.ImageURIs.Normal
			}
			card.Faces[i] = face
		}
	}

	return card
}
