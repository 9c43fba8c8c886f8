package manatext

import "strings"

// symbolBaseURL is where Scryfall hosts the card symbol artwork.
const symbolBaseURL = "https://svgs.scryfall.io/card-symbols/"

// knownSymbols lists every token that renders as an icon.
var knownSymbols = []string{
	// Colors, colorless and tap
	"{W}", "{U}", "{B}", "{R}", "{G}", "{C}", "{T}",

	// Generic costs
	"{0}", "{1}", "{2}", "{3}", "{4}", "{5}", "{6}", "{7}", "{8}", "{9}", "{10}",
	"{11}", "{12}", "{13}", "{14}", "{15}", "{16}", "{17}", "{18}", "{19}", "{20}",

	// Variable, snow, untap and energy
	"{X}", "{Y}", "{Z}", "{S}", "{Q}", "{E}",

	// Two-color hybrid
	"{W/U}", "{W/B}", "{U/B}", "{U/R}", "{B/R}", "{B/G}", "{R/G}", "{R/W}", "{G/W}", "{G/U}",

	// Monocolored hybrid
	"{2/W}", "{2/U}", "{2/B}", "{2/R}", "{2/G}",

	// Phyrexian
	"{W/P}", "{U/P}", "{B/P}", "{R/P}", "{G/P}", "{P}",

	// Half white
	"{HW}",
}

var symbolIcons = buildSymbolIcons(knownSymbols)

func buildSymbolIcons(tokens []string) map[string]string {
	icons := make(map[string]string, len(tokens))
	for _, token := range tokens {
		icons[token] = symbolBaseURL + iconName(token)
	}
	return icons
}

// iconName turns "{W/P}" into "WP.svg".
func iconName(token string) string {
	name := strings.Trim(token, "{}")
	name = strings.ReplaceAll(name, "/", "")
	return name + ".svg"
}

// IconURL returns the icon for a bracketed token such as "{G/U}".
func IconURL(token string) (string, bool) {
	url, ok := symbolIcons[token]
	return url, ok
}

// Symbols returns the known tokens in table order.
func Symbols() []string {
	out := make([]string, len(knownSymbols))
	copy(out, knownSymbols)
	return out
}
