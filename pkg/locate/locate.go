// Package locate finds single-valued header fields in a sheet by anchoring on
// keywords and probing the neighboring cells, falling back through a fixed
// list of tiers until one yields a value that passes the field's validation.
package locate

import (
	"regexp"
	"strings"

	"github.com/yurifrl/invex/pkg/grid"
)

// DefaultColumnLookahead is how many rows below a column label are searched.
const DefaultColumnLookahead = 20

type Kind string

const (
	InvoiceNumber Kind = "invoice_number"
	CustomerCode  Kind = "customer_code"
	Currency      Kind = "currency"
	Date          Kind = "invoice_date"
)

// Tier identifies which step of the search produced a value.
type Tier int

const (
	TierNone Tier = iota
	TierPrimary
	TierColumn
	TierBare
	TierSecondary
	TierSignal
	TierDefault
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary keyword"
	case TierColumn:
		return "column label"
	case TierBare:
		return "bare pattern"
	case TierSecondary:
		return "secondary keyword"
	case TierSignal:
		return "signal"
	case TierDefault:
		return "default"
	}
	return "none"
}

// Match is a located value and where it came from. Row and Col are -1 for
// defaults.
type Match struct {
	Kind  Kind
	Value string
	Tier  Tier
	Row   int
	Col   int
}

// Field is the configuration record for one header field. The same search
// runs for every field; only the record differs.
type Field struct {
	Kind Kind

	// Primary keywords are tried first; neighbors must pass Strict.
	Primary []string
	// ColumnLabels are exact (case-insensitive) table header texts.
	ColumnLabels []string
	// Secondary keywords are tried after the bare pattern, accepting with Loose.
	Secondary []string

	// Strict validates a candidate and returns the value to keep.
	Strict func(string) (string, bool)
	// Bare is searched for inside any cell.
	Bare *regexp.Regexp
	// Loose is the acceptance test for secondary keywords; Strict when nil.
	Loose func(string) (string, bool)
	// Signals is an optional lowest-priority per-cell scan.
	Signals func(string) (string, bool)
	// Default, when set, makes the field always resolve.
	Default func() string

	ColumnLookahead int
}

// Locate runs every tier, including the default, and reports whether a value
// was resolved.
func Locate(g *grid.Grid, f Field) (string, bool) {
	if m, ok := Find(g, f); ok {
		return m.Value, true
	}
	if f.Default != nil {
		return f.Default(), true
	}
	return "", false
}

// Find runs the searching tiers (everything except the default) in order and
// returns the first match.
func Find(g *grid.Grid, f Field) (Match, bool) {
	if g == nil {
		return Match{}, false
	}
	strict := f.Strict
	if strict == nil {
		strict = nonEmpty
	}

	if m, ok := scanKeywords(g, f.Primary, strict, TierPrimary); ok {
		return m.withKind(f.Kind), true
	}
	if m, ok := scanColumnLabels(g, f.ColumnLabels, strict, f.ColumnLookahead); ok {
		return m.withKind(f.Kind), true
	}
	if m, ok := scanBare(g, f.Bare, strict); ok {
		return m.withKind(f.Kind), true
	}

	loose := f.Loose
	if loose == nil {
		loose = strict
	}
	if m, ok := scanKeywords(g, f.Secondary, loose, TierSecondary); ok {
		return m.withKind(f.Kind), true
	}
	if f.Signals != nil {
		if m, ok := scanCells(g, f.Signals, TierSignal); ok {
			return m.withKind(f.Kind), true
		}
	}
	return Match{}, false
}

func (m Match) withKind(k Kind) Match {
	m.Kind = k
	return m
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

// scanKeywords scans cells row-major. The first cell containing a keyword is
// tried for that keyword: a token after it in the same cell, then the cell to
// the right, then the cell below. Later occurrences of the same keyword are
// ignored.
func scanKeywords(g *grid.Grid, keywords []string, accept func(string) (string, bool), tier Tier) (Match, bool) {
	if len(keywords) == 0 {
		return Match{}, false
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	tried := make(map[string]bool, len(keywords))

	var (
		found Match
		ok    bool
	)
	g.Each(func(c grid.Cell) bool {
		cell := strings.ToLower(c.Text)
		for i, kw := range lowered {
			if kw == "" || tried[kw] || !strings.Contains(cell, kw) {
				continue
			}
			tried[kw] = true
			if found, ok = checkNeighbors(g, c, keywords[i], accept); ok {
				found.Tier = tier
				return false
			}
		}
		return true
	})
	return found, ok
}

func checkNeighbors(g *grid.Grid, c grid.Cell, keyword string, accept func(string) (string, bool)) (Match, bool) {
	for _, candidate := range sameCellCandidates(c.Text, keyword) {
		if v, ok := accept(candidate); ok {
			return Match{Value: v, Row: c.Row, Col: c.Col}, true
		}
	}
	if v, ok := acceptCell(g, c.Row, c.Col+1, accept); ok {
		return Match{Value: v, Row: c.Row, Col: c.Col + 1}, true
	}
	if v, ok := acceptCell(g, c.Row+1, c.Col, accept); ok {
		return Match{Value: v, Row: c.Row + 1, Col: c.Col}, true
	}
	return Match{}, false
}

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9\-/.]+`)

// sameCellCandidates returns the token right after keyword in text, then the
// whole remainder of the cell.
func sameCellCandidates(text, keyword string) []string {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(keyword)) + `[\s:#°º№.\-]*`)
	if err != nil {
		return nil
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	rest := strings.TrimSpace(text[loc[1]:])
	if rest == "" {
		return nil
	}

	var out []string
	if token := strings.TrimRight(tokenPattern.FindString(rest), ".-/"); token != "" {
		out = append(out, token)
	}
	if len(out) == 0 || out[0] != rest {
		out = append(out, rest)
	}
	return out
}

func acceptCell(g *grid.Grid, r, c int, accept func(string) (string, bool)) (string, bool) {
	text := g.At(r, c)
	if text == "" {
		return "", false
	}
	return accept(text)
}

// scanColumnLabels looks for a header cell equal to one of labels, then for a
// valid value in the rows below it, then in the cell to its right.
func scanColumnLabels(g *grid.Grid, labels []string, accept func(string) (string, bool), lookahead int) (Match, bool) {
	if len(labels) == 0 {
		return Match{}, false
	}
	if lookahead <= 0 {
		lookahead = DefaultColumnLookahead
	}

	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[strings.ToLower(strings.TrimSpace(l))] = true
	}

	var (
		found Match
		ok    bool
	)
	g.Each(func(c grid.Cell) bool {
		if !set[strings.ToLower(c.Text)] {
			return true
		}
		for r := c.Row + 1; r <= c.Row+lookahead && r < g.Rows(); r++ {
			if v, hit := acceptCell(g, r, c.Col, accept); hit {
				found, ok = Match{Value: v, Tier: TierColumn, Row: r, Col: c.Col}, true
				return false
			}
		}
		if v, hit := acceptCell(g, c.Row, c.Col+1, accept); hit {
			found, ok = Match{Value: v, Tier: TierColumn, Row: c.Row, Col: c.Col + 1}, true
			return false
		}
		return true
	})
	return found, ok
}

func scanBare(g *grid.Grid, re *regexp.Regexp, accept func(string) (string, bool)) (Match, bool) {
	if re == nil {
		return Match{}, false
	}
	return scanCells(g, func(text string) (string, bool) {
		for _, m := range re.FindAllString(text, -1) {
			if v, ok := accept(m); ok {
				return v, true
			}
		}
		return "", false
	}, TierBare)
}

func scanCells(g *grid.Grid, fn func(string) (string, bool), tier Tier) (Match, bool) {
	var (
		found Match
		ok    bool
	)
	g.Each(func(c grid.Cell) bool {
		if v, hit := fn(c.Text); hit {
			found, ok = Match{Value: v, Tier: tier, Row: c.Row, Col: c.Col}, true
			return false
		}
		return true
	})
	return found, ok
}
