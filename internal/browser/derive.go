package browser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ramonehamilton/card-binder/internal/catalog"
)

// RarityOrder is the fixed order of the grouped view. Cards of any other
// rarity are not shown in it.
var RarityOrder = []string{"common", "uncommon", "rare", "mythic", "special"}

// Ownership answers whether a card is owned. *ownership.Store implements it.
type Ownership interface {
	IsOwned(cardID string) bool
}

// Bucket is the filtered, sorted cards of one rarity.
type Bucket struct {
	Rarity string         `json:"rarity"`
	Cards  []catalog.Card `json:"cards"`
	Owned  int            `json:"owned"`
	Total  int            `json:"total"`
}

// Header is the bucket title, e.g. "mythic (0 de 1)".
func (b Bucket) Header() string {
	return fmt.Sprintf("%s (%d de %d)", b.Rarity, b.Owned, b.Total)
}

// View is the derived grid.
type View struct {
	Buckets []Bucket `json:"buckets"`

	// CatalogSize counts every loaded card, before filtering.
	CatalogSize int `json:"catalogSize"`

	// Unlisted counts cards whose rarity is outside RarityOrder.
	Unlisted int `json:"unlisted"`
}

// Derive groups cards by rarity, sorts each group by collector number,
// applies the filters and drops empty groups. It does not modify cards.
func Derive(cards []catalog.Card, owned Ownership, f Filters) View {
	groups := make(map[string][]catalog.Card, len(RarityOrder))
	for _, c := range cards {
		groups[c.Rarity] = append(groups[c.Rarity], c)
	}

	view := View{CatalogSize: len(cards)}
	listed := 0

	for _, rarity := range RarityOrder {
		group := groups[rarity]
		listed += len(group)
		if len(group) == 0 {
			continue
		}

		sortByCollectorNumber(group)

		bucket := Bucket{Rarity: rarity}
		for _, c := range group {
			isOwned := owned.IsOwned(c.ID)
			if !f.Matches(c, isOwned) {
				continue
			}
			bucket.Cards = append(bucket.Cards, c)
			if isOwned {
				bucket.Owned++
			}
		}

		if len(bucket.Cards) == 0 {
			continue
		}
		bucket.Total = len(bucket.Cards)
		view.Buckets = append(view.Buckets, bucket)
	}

	view.Unlisted = len(cards) - listed
	return view
}

// sortByCollectorNumber orders cards in place; equal numbers keep their
// catalog order.
func sortByCollectorNumber(cards []catalog.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return CollectorNumberValue(cards[i].CollectorNumber) < CollectorNumberValue(cards[j].CollectorNumber)
	})
}

// CollectorNumberValue keeps only the digits of a collector number and
// parses them: "015" → 15, "12a" → 12, "★" → 0.
func CollectorNumberValue(number string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Options lists the values offered by the rarity and set selectors.
type Options struct {
	Rarities []string `json:"rarities"`
	Sets     []string `json:"sets"`
}

// OptionsFor collects distinct rarities and set names in first-seen order.
// Rarities outside RarityOrder are included.
func OptionsFor(cards []catalog.Card) Options {
	opts := Options{Rarities: []string{}, Sets: []string{}}
	seenRarity := make(map[string]bool)
	seenSet := make(map[string]bool)

	for _, c := range cards {
		if !seenRarity[c.Rarity] {
			seenRarity[c.Rarity] = true
			opts.Rarities = append(opts.Rarities, c.Rarity)
		}
		if !seenSet[c.SetName] {
			seenSet[c.SetName] = true
			opts.Sets = append(opts.Sets, c.SetName)
		}
	}

	return opts
}

// isListedRarity reports whether a rarity has a bucket in the grouped view.
func isListedRarity(rarity string) bool {
	for _, r := range RarityOrder {
		if r == rarity {
			return true
		}
	}
	return false
}
