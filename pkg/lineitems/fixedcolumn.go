package lineitems

import (
	"regexp"
	"strings"

	"github.com/yurifrl/invex/pkg/grid"
	"github.com/yurifrl/invex/pkg/models"
)

var documentNumber = regexp.MustCompile(`^SI\d+$`)

// Exact header labels of the rigid items layout.
var fixedLabels = map[string]Role{
	"description":   RoleDescription,
	"quantity":      RoleQuantity,
	"unit price":    RolePrice,
	"internal code": RoleCode,
	"item code":     RoleCode,
}

const fixedDocumentLabel = "document number"

// FixedColumn reads sheets laid out as Document Number / Description /
// Quantity / Unit Price columns. Only rows whose document number is a valid
// invoice number (the given one, when known) are accepted.
type FixedColumn struct {
	rules rowRules
}

func (s *FixedColumn) Name() string { return "fixed_column" }

func (s *FixedColumn) TryExtract(g *grid.Grid, invoiceNumber string) ([]models.LineItem, bool) {
	var items []models.LineItem
	for r := 0; r < g.Rows(); r++ {
		doc, cols, ok := bindFixed(g.Row(r))
		if !ok {
			continue
		}
		for d := r + 1; d < g.Rows(); d++ {
			if g.RowEmpty(d) {
				break
			}
			number := strings.TrimSpace(g.At(d, doc))
			if !documentNumber.MatchString(number) {
				continue
			}
			if invoiceNumber != "" && number != invoiceNumber {
				continue
			}
			if item, ok := s.rules.build(cols.cells(g, d)); ok {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			break
		}
	}
	return items, len(items) > 0
}

func isFixedHeader(row []string) bool {
	_, _, ok := bindFixed(row)
	return ok
}

// bindFixed binds by exact label equality and needs every required column.
func bindFixed(row []string) (int, columns, bool) {
	doc := -1
	cols := unbound()
	for i, cell := range row {
		label := strings.ToLower(strings.TrimSpace(cell))
		if label == fixedDocumentLabel && doc < 0 {
			doc = i
			continue
		}
		switch fixedLabels[label] {
		case RoleDescription:
			if cols.description < 0 {
				cols.description = i
			}
		case RoleQuantity:
			if cols.quantity < 0 {
				cols.quantity = i
			}
		case RolePrice:
			if cols.price < 0 {
				cols.price = i
			}
		case RoleCode:
			if cols.code < 0 {
				cols.code = i
			}
		}
	}
	ok := doc >= 0 && cols.description >= 0 && cols.quantity >= 0 && cols.price >= 0
	return doc, cols, ok
}
