package manatext

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func icon(token string) Segment {
	url, _ := IconURL(token)
	return Segment{Kind: KindIcon, Raw: token, Icon: url}
}

func text(s string) Segment {
	return Segment{Kind: KindText, Raw: s}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Segment
	}{
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "cost followed by text",
			in:   "{2}{W/P}Foo",
			want: []Segment{icon("{2}"), icon("{W/P}"), text("Foo")},
		},
		{
			name: "plain text",
			in:   "Flying, vigilance",
			want: []Segment{text("Flying, vigilance")},
		},
		{
			name: "unknown token stays separate from neighbours",
			in:   "Pay {Ω} now",
			want: []Segment{text("Pay "), text("{Ω}"), text(" now")},
		},
		{
			name: "oracle text with tap symbol",
			in:   "{T}: Add {G}.",
			want: []Segment{icon("{T}"), text(": Add "), icon("{G}"), text(".")},
		},
		{
			name: "unterminated brace is literal",
			in:   "{1}{G",
			want: []Segment{icon("{1}"), text("{G")},
		},
		{
			name: "lone closing brace is literal",
			in:   "a}b{R}",
			want: []Segment{text("a}b"), icon("{R}")},
		},
		{
			name: "empty braces",
			in:   "{}",
			want: []Segment{text("{}")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestRender_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"{2}{W/P}Foo",
		"When this creature enters, draw a card.\n{3}{U}, {T}: Scry 2.",
		"{{W}}",
		"}{",
		"{HW}{X}{Y}{Z} and {unknown}",
		"Ward {2}—Pay 3 life.",
		"{",
		"}",
	}

	for _, in := range inputs {
		if got := Join(Render(in)); got != in {
			t.Errorf("Join(Render(%q)) = %q", in, got)
		}
	}
}

func TestRender_EveryKnownSymbolIsIcon(t *testing.T) {
	for _, token := range Symbols() {
		segs := Render(token)
		if len(segs) != 1 {
			t.Fatalf("Render(%q) returned %d segments", token, len(segs))
		}
		if !segs[0].IsIcon() {
			t.Errorf("Render(%q) is not an icon segment", token)
		}
	}
}

func TestRender_Idempotent(t *testing.T) {
	in := "{B/G}{B/G}: Regenerate target creature."
	if diff := cmp.Diff(Render(in), Render(in)); diff != "" {
		t.Errorf("Render is not deterministic:\n%s", diff)
	}
}

func TestSegment_Key(t *testing.T) {
	segs := Render("{2}{W/P}Foo")
	keys := []string{segs[0].Key(), segs[1].Key(), segs[2].Key()}
	want := []string{"2", "W/P", ""}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestIconURL(t *testing.T) {
	url, ok := IconURL("{W/P}")
	if !ok {
		t.Fatal("expected {W/P} to be known")
	}
	if url != "https://svgs.scryfall.io/card-symbols/WP.svg" {
		t.Errorf("unexpected icon url %s", url)
	}

	if _, ok := IconURL("{W}{U}"); ok {
		t.Error("compound token should not be known")
	}
}

func TestSymbols_Count(t *testing.T) {
	if n := len(Symbols()); n != 56 {
		t.Errorf("expected 56 symbols, got %d", n)
	}
}
