// Package sanitize masks a fixed vocabulary of sensitive words before text is
// rendered into a card or sent as a message.
package sanitize

import (
	"fmt"
	"regexp"
)

// Rule maps one exact word to its masked spelling.
type Rule struct {
	Word   string
	Masked string
}

// Rules is the ordered masking table. Matching is whole-word and
// case-insensitive; the masked spellings contain an asterisk so they can never
// re-trigger a rule.
var Rules = []Rule{
	{"kill", "Ki*ll"},
	{"kills", "Ki*lls"},
	{"killed", "Kil*led"},
	{"murder", "Mu*rder"},
	{"murders", "Mu*rders"},
	{"murdered", "Mur*dered"},
	{"assassinate", "As*sa*ssinate"},
	{"assassinates", "As*sa*ssinates"},
	{"assassinated", "As*sa*ssinated"},
	{"stab", "St*ab"},
	{"stabs", "St*abs"},
	{"stabbed", "St*abbed"},
	{"slaughter", "Sl*aughter"},
	{"slaughters", "Sl*aughters"},
	{"slaughtered", "Sl*aughtered"},
	{"rape", "Ra*pe"},
	{"rapes", "Ra*pes"},
	{"raped", "Ra*ped"},
	{"gaza", "Ga*za"},
	{"israel", "Isr*ael"},
	{"palestine", "Pa*le*stine"},
}

var compiled []*regexp.Regexp

func init() {
	compiled = make([]*regexp.Regexp, len(Rules))
	for i, r := range Rules {
		compiled[i] = regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(r.Word)))
	}
}

// Mask applies every rule in order to text and returns the masked result.
// Empty input is returned unchanged. A rule matches only the exact word, never
// a substring of a longer token.
func Mask(text string) string {
	if text == "" {
		return text
	}
	out := text
	for i, re := range compiled {
		out = re.ReplaceAllString(out, Rules[i].Masked)
	}
	return out
}
