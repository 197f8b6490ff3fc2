package lineitems

import (
	"strings"

	"github.com/yurifrl/invex/pkg/grid"
	"github.com/yurifrl/invex/pkg/models"
)

// LabeledSection reads the table introduced by a marker such as
// "Invoice Details". The header row must sit within a few rows below it.
type LabeledSection struct {
	reader    tableReader
	lookahead int
}

func (s *LabeledSection) Name() string { return "labeled_section" }

func (s *LabeledSection) TryExtract(g *grid.Grid, _ string) ([]models.LineItem, bool) {
	var items []models.LineItem
	next := 0
	for r := 0; r < g.Rows(); r++ {
		if r < next || !rowHasMarker(g, r) {
			continue
		}
		for h := r + 1; h <= r+s.lookahead && h < g.Rows(); h++ {
			cols := bindColumns(s.reader.classifier, g.Row(h))
			if !cols.usable() {
				continue
			}
			found, end := s.reader.read(g, h, cols, 0)
			items = append(items, found...)
			next = end
			break
		}
	}
	return items, len(items) > 0
}

func rowHasMarker(g *grid.Grid, r int) bool {
	for c := 0; c < g.Cols(); c++ {
		lower := strings.ToLower(g.At(r, c))
		if lower == "" {
			continue
		}
		for _, m := range SectionMarkers {
			if containsWord(lower, strings.ToLower(m)) {
				return true
			}
		}
	}
	return false
}
