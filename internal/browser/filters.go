package browser

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/card-binder/internal/catalog"
)

// OwnershipFilter restricts the view by owned state.
type OwnershipFilter int

const (
	OwnershipAll OwnershipFilter = iota
	OwnershipOwned
	OwnershipMissing
)

// String returns the wire name used in query strings.
func (f OwnershipFilter) String() string {
	switch f {
	case OwnershipOwned:
		return "owned"
	case OwnershipMissing:
		return "missing"
	default:
		return "all"
	}
}

// ParseOwnershipFilter accepts "", "all", "owned" and "missing".
func ParseOwnershipFilter(s string) (OwnershipFilter, error) {
	switch s {
	case "", "all":
		return OwnershipAll, nil
	case "owned":
		return OwnershipOwned, nil
	case "missing":
		return OwnershipMissing, nil
	default:
		return OwnershipAll, fmt.Errorf("unknown ownership filter %q", s)
	}
}

func (f OwnershipFilter) matches(owned bool) bool {
	switch f {
	case OwnershipOwned:
		return owned
	case OwnershipMissing:
		return !owned
	default:
		return true
	}
}

// Choice is either "all" (the zero value) or one specific value.
type Choice struct {
	value    string
	specific bool
}

// All matches every value.
func All() Choice {
	return Choice{}
}

// Only matches exactly v.
func Only(v string) Choice {
	return Choice{value: v, specific: true}
}

// ParseChoice maps "" and "all" to All and anything else to Only.
func ParseChoice(s string) Choice {
	if s == "" || s == "all" {
		return All()
	}
	return Only(s)
}

// IsAll reports whether the choice matches everything.
func (c Choice) IsAll() bool {
	return !c.specific
}

// Value returns the selected value, or "" for All.
func (c Choice) Value() string {
	return c.value
}

// String returns the wire form: "all" or the value.
func (c Choice) String() string {
	if !c.specific {
		return "all"
	}
	return c.value
}

func (c Choice) matches(v string) bool {
	return !c.specific || c.value == v
}

// Filters is the complete filter state of the grid. The zero value shows
// everything.
type Filters struct {
	Search    string
	Ownership OwnershipFilter
	Rarity    Choice
	Set       Choice
}

// Matches applies all four predicates independently.
func (f Filters) Matches(card catalog.Card, owned bool) bool {
	return nameContains(card.Name, f.Search) &&
		f.Ownership.matches(owned) &&
		f.Rarity.matches(card.Rarity) &&
		f.Set.matches(card.SetName)
}

func nameContains(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}
