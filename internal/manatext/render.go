// Package manatext splits card text into icon and literal segments so mana
// symbols like {2}{W/P} can be drawn as images.
package manatext

import "strings"

// Kind distinguishes icon segments from literal text.
type Kind int

const (
	KindText Kind = iota
	KindIcon
)

func (k Kind) String() string {
	if k == KindIcon {
		return "icon"
	}
	return "text"
}

// Segment is one renderable piece of a card text.
type Segment struct {
	Kind Kind   `json:"kind"`
	Raw  string `json:"raw"`            // exact source slice, "{W}" for icons
	Icon string `json:"icon,omitempty"` // icon URL, set only for KindIcon
}

// Key returns the symbol key of an icon segment ("W/P" for "{W/P}").
func (s Segment) Key() string {
	if s.Kind != KindIcon {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(s.Raw, "{"), "}")
}

// IsIcon reports whether the segment should be drawn as a symbol image.
func (s Segment) IsIcon() bool {
	return s.Kind == KindIcon
}

// Render tokenizes text into bracketed tokens and the runs between them.
// Tokens found in the symbol table become icon segments; every other token is
// kept verbatim as text. A "{" with no closing brace starts literal text that
// runs to the end of the input.
func Render(text string) []Segment {
	if text == "" {
		return nil
	}

	var segs []Segment
	textStart := 0
	i := 0
	for i < len(text) {
		if text[i] != '{' {
			i++
			continue
		}

		closing := strings.IndexByte(text[i+1:], '}')
		if closing < 0 {
			break
		}

		if textStart < i {
			segs = append(segs, Segment{Kind: KindText, Raw: text[textStart:i]})
		}

		end := i + closing + 2
		token := text[i:end]
		if url, ok := symbolIcons[token]; ok {
			segs = append(segs, Segment{Kind: KindIcon, Raw: token, Icon: url})
		} else {
			segs = append(segs, Segment{Kind: KindText, Raw: token})
		}

		i = end
		textStart = end
	}

	if textStart < len(text) {
		segs = append(segs, Segment{Kind: KindText, Raw: text[textStart:]})
	}

	return segs
}

// Join concatenates the raw form of each segment. Join(Render(s)) == s.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Raw)
	}
	return b.String()
}
