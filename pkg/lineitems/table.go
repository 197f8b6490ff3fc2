package lineitems

import (
	"github.com/yurifrl/invex/pkg/grid"
	"github.com/yurifrl/invex/pkg/models"
)

// columns maps roles to column indexes; -1 means the role is unbound.
type columns struct {
	code        int
	description int
	quantity    int
	price       int
	amount      int
}

func unbound() columns {
	return columns{code: -1, description: -1, quantity: -1, price: -1, amount: -1}
}

// bindColumns assigns each role to the leftmost header cell classified as it.
func bindColumns(c *Classifier, header []string) columns {
	cols := unbound()
	for i, role := range c.Roles(header) {
		var slot *int
		switch role {
		case RoleCode:
			slot = &cols.code
		case RoleDescription:
			slot = &cols.description
		case RoleQuantity:
			slot = &cols.quantity
		case RolePrice:
			slot = &cols.price
		case RoleAmount:
			slot = &cols.amount
		default:
			continue
		}
		if *slot < 0 {
			*slot = i
		}
	}
	return cols
}

// usable needs a description and something to price it with.
func (c columns) usable() bool {
	return c.description >= 0 && (c.quantity >= 0 || c.price >= 0 || c.amount >= 0)
}

func (c columns) cells(g *grid.Grid, r int) rowCells {
	return rowCells{
		code:        g.At(r, c.code),
		description: g.At(r, c.description),
		quantity:    g.At(r, c.quantity),
		price:       g.At(r, c.price),
		amount:      g.At(r, c.amount),
	}
}

// tableReader walks the data rows under a header row.
type tableReader struct {
	classifier *Classifier
	rules      rowRules
}

// read returns the accepted items below header and the row where reading
// stopped. It stops at an all-empty row, a repeated header row, or after
// limit rows when limit is positive.
func (t tableReader) read(g *grid.Grid, header int, cols columns, limit int) ([]models.LineItem, int) {
	var items []models.LineItem
	r := header + 1
	for ; r < g.Rows(); r++ {
		if limit > 0 && r > header+limit {
			break
		}
		if g.RowEmpty(r) {
			break
		}
		// a repeated header, even a lone keyword in the description
		// column, starts the next table
		if t.classifier.IsHeaderRow(g.Row(r)) || t.classifier.IsHeaderTerm(g.At(r, cols.description)) {
			break
		}
		if item, ok := t.rules.build(cols.cells(g, r)); ok {
			items = append(items, item)
		}
	}
	return items, r
}
