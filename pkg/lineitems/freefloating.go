package lineitems

import (
	"github.com/yurifrl/invex/pkg/grid"
	"github.com/yurifrl/invex/pkg/models"
)

// FreeFloatingHeader finds header rows anywhere in the sheet. Each table is
// read for at most window rows.
type FreeFloatingHeader struct {
	reader tableReader
	window int
}

func (s *FreeFloatingHeader) Name() string { return "free_floating_header" }

func (s *FreeFloatingHeader) TryExtract(g *grid.Grid, _ string) ([]models.LineItem, bool) {
	var items []models.LineItem
	for r := 0; r < g.Rows(); r++ {
		row := g.Row(r)
		// rigid schema headers belong to FixedColumn
		if isFixedHeader(row) || !s.reader.classifier.IsHeaderRow(row) {
			continue
		}
		cols := bindColumns(s.reader.classifier, row)
		if !cols.usable() {
			continue
		}
		found, end := s.reader.read(g, r, cols, s.window)
		items = append(items, found...)
		if end > r+1 {
			r = end - 1
		}
	}
	return items, len(items) > 0
}
