// Package language holds the fixed set of languages a consultation can run
// in. The set is closed: translation quality outside it is unverified, so
// unknown names are rejected at the selection stage rather than guessed at.
package language

import (
	"sort"
	"strings"
)

var codes = map[string]string{
	"English":    "en",
	"Arabic":     "ar",
	"Bengali":    "bn",
	"German":     "de",
	"Spanish":    "es",
	"French":     "fr",
	"Hindi":      "hi",
	"Italian":    "it",
	"Japanese":   "ja",
	"Kannada":    "kn",
	"Korean":     "ko",
	"Portuguese": "pt",
	"Russian":    "ru",
	"Tamil":      "ta",
	"Telugu":     "te",
	"Thai":       "th",
	"Turkish":    "tr",
	"Ukrainian":  "uk",
	"Vietnamese": "vi",
	"Chinese":    "zh",
}

// Lookup matches a user-typed language name case-insensitively and returns
// the canonical display name and code.
func Lookup(name string) (displayName, code string, ok bool) {
	name = strings.TrimSpace(name)
	for n, c := range codes {
		if strings.EqualFold(n, name) {
			return n, c, true
		}
	}
	return "", "", false
}

// Names returns the supported display names in alphabetical order.
func Names() []string {
	out := make([]string, 0, len(codes))
	for n := range codes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ValidCode reports whether code belongs to a supported language.
func ValidCode(code string) bool {
	_, ok := nameFor(code)
	return ok
}

// NameFor returns the display name for a language code.
func NameFor(code string) (string, bool) {
	return nameFor(code)
}

func nameFor(code string) (string, bool) {
	for n, c := range codes {
		if c == code {
			return n, true
		}
	}
	return "", false
}

// Pair couples a display name with its code for UI listings.
type Pair struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// All returns name/code pairs in alphabetical name order.
func All() []Pair {
	names := Names()
	out := make([]Pair, len(names))
	for i, n := range names {
		out[i] = Pair{Name: n, Code: codes[n]}
	}
	return out
}
