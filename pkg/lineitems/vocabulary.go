package lineitems

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/schollz/closestmatch"
)

// Role is the meaning of a table column.
type Role int

const (
	RoleNone Role = iota
	RoleCode
	RoleDescription
	RoleQuantity
	RolePrice
	RoleAmount
)

func (r Role) String() string {
	switch r {
	case RoleCode:
		return "code"
	case RoleDescription:
		return "description"
	case RoleQuantity:
		return "quantity"
	case RolePrice:
		return "unit_price"
	case RoleAmount:
		return "amount"
	}
	return "none"
}

// Vocabulary lists the header terms that bind a column to a role. English,
// Arabic and mis-decoded Arabic spellings live side by side.
type Vocabulary struct {
	Role  Role
	Terms []string
}

// DefaultVocabularies is ordered by precedence: a header is bound to the first
// role with a matching term, so "Item Code" is a code and "Total Price" an
// amount.
var DefaultVocabularies = []Vocabulary{
	{RoleCode, []string{
		"item code", "product code", "internal code", "code", "sku", "part no", "ref",
		"كود الصنف", "رمز الصنف", "الكود", "ßæÏ ÇáÕäÝ",
	}},
	{RoleAmount, []string{
		"total price", "line total", "total amount", "net amount", "amount", "total", "value",
		"الاجمالي", "الإجمالي", "القيمة", "ÇáÇÌãÇáí", "ÇáÅÌãÇáí", "ÇáÞíãÉ",
	}},
	{RolePrice, []string{
		"unit price", "price per unit", "unit cost", "price", "rate",
		"سعر الوحدة", "سعر الوحده", "السعر", "التكلفة",
		"ÓÚÑ ÇáæÍÏÉ", "ÓÚÑ ÇáæÍÏå", "ÇáÓÚÑ",
	}},
	{RoleQuantity, []string{
		"quantity", "qty", "pcs", "count",
		"الكمية", "الكميه", "العدد", "قطع",
		"ÇáßãíÉ", "Çáßãíå", "ÇáÚÏÏ",
	}},
	{RoleDescription, []string{
		"product description", "description", "designation", "product", "item", "service", "detail", "details",
		"التسمية", "الوصف", "المنتج", "البند", "الخدمة", "التفاصيل",
		"ÇáÊÓãíÉ", "ÇáæÕÝ", "ÇáãäÊÌ", "ÇáÈäÏ",
	}},
}

// SectionMarkers introduce a labeled item table.
var SectionMarkers = []string{
	"invoice details", "item details", "product details", "line items", "items",
	"بيانات الفاتورة", "تفاصيل الفاتورة", "الأصناف", "ÈíÇäÇÊ ÇáÝÇÊæÑÉ",
}

// PlaceholderMarkers identify weight and packaging rows.
var PlaceholderMarkers = []string{
	"total weight", "total package", "gross weight", "net weight", "no. of packages", "number of packages",
	"الوزن الإجمالي", "الوزن الاجمالي", "إجمالي الوزن", "عدد الطرود", "ÇáæÒä ÇáÅÌãÇáí",
}

const (
	fuzzyMinLength  = 4
	fuzzyMaxLength  = 40
	fuzzyCandidates = 5
)

type term struct {
	text string
	role Role
}

// Classifier binds header text to column roles.
type Classifier struct {
	terms []term
	exact map[string]Role
	fuzzy *closestmatch.ClosestMatch
}

// NewClassifier indexes vocab. With fuzzy set, near-miss spellings of a term
// are also accepted.
func NewClassifier(vocab []Vocabulary, fuzzy bool) *Classifier {
	c := &Classifier{exact: make(map[string]Role)}
	var words []string
	for _, v := range vocab {
		for _, t := range v.Terms {
			lower := strings.ToLower(strings.TrimSpace(t))
			if lower == "" {
				continue
			}
			c.terms = append(c.terms, term{text: lower, role: v.Role})
			if _, ok := c.exact[lower]; !ok {
				c.exact[lower] = v.Role
				words = append(words, lower)
			}
		}
	}
	if fuzzy && len(words) > 0 {
		c.fuzzy = closestmatch.New(words, []int{2, 3})
	}
	return c
}

// Classify returns the role of a header cell, or RoleNone.
func (c *Classifier) Classify(cell string) Role {
	lower := cleanHeader(cell)
	if lower == "" {
		return RoleNone
	}
	for _, t := range c.terms {
		if containsWord(lower, t.text) {
			return t.role
		}
	}
	if c.fuzzy == nil {
		return RoleNone
	}

	n := utf8.RuneCountInString(lower)
	if n < fuzzyMinLength || n > fuzzyMaxLength {
		return RoleNone
	}
	for _, candidate := range c.fuzzy.ClosestN(lower, fuzzyCandidates) {
		if nearMiss(lower, candidate) {
			return c.exact[candidate]
		}
	}
	return RoleNone
}

// IsHeaderTerm reports whether s is exactly one of the vocabulary terms.
func (c *Classifier) IsHeaderTerm(s string) bool {
	_, ok := c.exact[cleanHeader(s)]
	return ok
}

// Roles classifies every cell of row.
func (c *Classifier) Roles(row []string) []Role {
	out := make([]Role, len(row))
	for i, cell := range row {
		out[i] = c.Classify(cell)
	}
	return out
}

// IsHeaderRow reports whether row names at least two of description,
// quantity and unit price.
func (c *Classifier) IsHeaderRow(row []string) bool {
	seen := map[Role]bool{}
	for _, r := range c.Roles(row) {
		switch r {
		case RoleDescription, RoleQuantity, RolePrice:
			seen[r] = true
		}
	}
	return len(seen) >= 2
}

func cleanHeader(s string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(s), ":：*"))
}

// nearMiss accepts a fuzzy suggestion only when it is a plausible misspelling.
func nearMiss(s, candidate string) bool {
	a, b := []rune(s), []rune(candidate)
	diff := len(a) - len(b)
	if diff < -2 || diff > 2 {
		return false
	}
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	return prefix >= 3
}

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in s bounded by non-letters.
func containsWord(s, word string) bool {
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if isBoundary(s[:start], true) && isBoundary(s[end:], false) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		from = start + size
	}
	return false
}

func isBoundary(s string, before bool) bool {
	if s == "" {
		return true
	}
	var r rune
	if before {
		r, _ = utf8.DecodeLastRuneInString(s)
	} else {
		r, _ = utf8.DecodeRuneInString(s)
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
