package locate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCurrencies is the closed set used when none is configured.
var DefaultCurrencies = []string{"EGP", "USD", "EUR"}

type currencyHint struct {
	text string
	code string
}

// Checked in order; "e£" must come before "£".
var currencySymbols = []currencyHint{
	{"e£", "EGP"},
	{"ج.م", "EGP"},
	{"us$", "USD"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
}

var currencyWords = []currencyHint{
	{"dollar", "USD"},
	{"dollars", "USD"},
	{"دولار", "USD"},
	{"بالدولار", "USD"},
	{"ÏæáÇÑ", "USD"},
	{"euro", "EUR"},
	{"euros", "EUR"},
	{"يورو", "EUR"},
	{"باليورو", "EUR"},
	{"íæÑæ", "EUR"},
	{"sterling", "GBP"},
	{"pound", "EGP"},
	{"pounds", "EGP"},
	{"le", "EGP"},
	{"l.e", "EGP"},
	{"l.e.", "EGP"},
	{"جنيه", "EGP"},
	{"بالجنيه", "EGP"},
	{"Ìäíå", "EGP"},
}

var currencyDemonyms = []currencyHint{
	{"egypt", "EGP"},
	{"egyptian", "EGP"},
	{"مصر", "EGP"},
	{"مصري", "EGP"},
	{"مصرى", "EGP"},
	{"ãÕÑí", "EGP"},
}

type currencyResolver struct {
	allowed map[string]bool
	codes   *regexp.Regexp
	bare    *regexp.Regexp
}

func newCurrencyResolver(allowed []string) *currencyResolver {
	if len(allowed) == 0 {
		allowed = DefaultCurrencies
	}
	r := &currencyResolver{allowed: make(map[string]bool, len(allowed))}
	quoted := make([]string, 0, len(allowed))
	for _, code := range allowed {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || r.allowed[code] {
			continue
		}
		r.allowed[code] = true
		quoted = append(quoted, regexp.QuoteMeta(code))
	}
	alternation := strings.Join(quoted, "|")
	r.codes = regexp.MustCompile(`(?i)\b(` + alternation + `)\b`)
	r.bare = regexp.MustCompile(`\b(` + alternation + `)\b`)
	return r
}

// strict accepts a currency code, symbol or currency word.
func (r *currencyResolver) strict(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if code := strings.ToUpper(s); r.allowed[code] {
		return code, true
	}
	if m := r.codes.FindStringSubmatch(s); m != nil {
		return strings.ToUpper(m[1]), true
	}

	lower := strings.ToLower(s)
	for _, h := range currencySymbols {
		if strings.Contains(lower, h.text) {
			if code, ok := r.pick(h.code); ok {
				return code, true
			}
		}
	}
	return r.matchWords(lower, currencyWords)
}

// loose additionally accepts country mentions.
func (r *currencyResolver) loose(s string) (string, bool) {
	if code, ok := r.strict(s); ok {
		return code, true
	}
	return r.matchWords(strings.ToLower(strings.TrimSpace(s)), currencyDemonyms)
}

func (r *currencyResolver) matchWords(lower string, hints []currencyHint) (string, bool) {
	for _, h := range hints {
		if containsWord(lower, strings.ToLower(h.text)) {
			if code, ok := r.pick(h.code); ok {
				return code, true
			}
		}
	}
	return "", false
}

// pick maps a hinted code into the allowed set. A bare pound sign is read as
// the Egyptian pound when sterling is not allowed.
func (r *currencyResolver) pick(code string) (string, bool) {
	if r.allowed[code] {
		return code, true
	}
	if code == "GBP" && r.allowed["EGP"] {
		return "EGP", true
	}
	return "", false
}

// containsWord reports whether word occurs in s bounded by non-letters.
func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
