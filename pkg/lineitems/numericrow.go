package lineitems

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/yurifrl/invex/pkg/grid"
	"github.com/yurifrl/invex/pkg/models"
)

// codeLike matches short reference codes such as SI00123 or C-12, which are
// never descriptions.
var codeLike = regexp.MustCompile(`^[A-Za-z]{1,3}[-/]?\d+$`)

// NumericRow is the last resort: any row with a textual cell and at least two
// numeric cells is read as description, quantity, unit price.
type NumericRow struct {
	rules rowRules
}

func (s *NumericRow) Name() string { return "numeric_row" }

func (s *NumericRow) TryExtract(g *grid.Grid, _ string) ([]models.LineItem, bool) {
	var items []models.LineItem
	for r := 0; r < g.Rows(); r++ {
		cells, ok := numericCells(g.Row(r))
		if !ok {
			continue
		}
		if item, ok := s.rules.build(cells); ok {
			items = append(items, item)
		}
	}
	return items, len(items) > 0
}

func numericCells(row []string) (rowCells, bool) {
	desc := -1
	fallback := -1
	for i, cell := range row {
		if cell == "" || IsNumeric(cell) || !hasLetter(cell) {
			continue
		}
		if fallback < 0 || utf8.RuneCountInString(cell) > utf8.RuneCountInString(row[fallback]) {
			fallback = i
		}
		if codeLike.MatchString(cell) {
			continue
		}
		if desc < 0 || utf8.RuneCountInString(cell) > utf8.RuneCountInString(row[desc]) {
			desc = i
		}
	}
	if desc < 0 {
		desc = fallback
	}
	if desc < 0 {
		return rowCells{}, false
	}

	var numbers []string
	for i, cell := range row {
		if i != desc && cell != "" && IsNumeric(cell) {
			numbers = append(numbers, cell)
		}
	}
	if len(numbers) < 2 {
		return rowCells{}, false
	}
	return rowCells{description: row[desc], quantity: numbers[0], price: numbers[1]}, true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
