package lineitems

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yurifrl/invex/pkg/models"
)

// rowRules decides whether a candidate row becomes a line item.
type rowRules struct {
	classifier          *Classifier
	capturePlaceholders bool
}

// rowCells is the raw text of one data row, already split into roles.
type rowCells struct {
	code        string
	description string
	quantity    string
	price       string
	amount      string
}

// IsPlaceholder reports whether a description names a weight or packaging row.
func IsPlaceholder(description string) bool {
	return containsAny(strings.ToLower(description), PlaceholderMarkers)
}

func (r rowRules) build(c rowCells) (models.LineItem, bool) {
	desc := strings.TrimSpace(c.description)
	if desc == "" {
		return models.LineItem{}, false
	}

	if IsPlaceholder(desc) {
		if !r.capturePlaceholders {
			return models.LineItem{}, false
		}
		return models.LineItem{
			Description: desc,
			Quantity:    models.Num(1),
			UnitPrice:   models.Num(0),
			ItemCode:    strings.TrimSpace(c.code),
			Placeholder: true,
		}, true
	}

	if r.classifier.IsHeaderTerm(desc) {
		return models.LineItem{}, false
	}

	qty := ParseValue(c.quantity)
	price := ParsePrice(c.price)
	if !price.IsNumeric() {
		price = priceFromAmount(qty, ParsePrice(c.amount), price)
	}

	if p, ok := price.Float(); !ok || p <= 0 {
		return models.LineItem{}, false
	}

	return models.LineItem{
		Description: desc,
		Quantity:    qty,
		UnitPrice:   price,
		ItemCode:    strings.TrimSpace(c.code),
	}, true
}

// priceFromAmount derives the unit price from a line amount when the price
// column is missing or unreadable.
func priceFromAmount(qty, amount, fallback models.Value) models.Value {
	q, ok := qty.Float()
	if !ok || q <= 0 {
		return fallback
	}
	a, ok := amount.Float()
	if !ok || a <= 0 {
		return fallback
	}
	p, _ := decimal.NewFromFloat(a).Div(decimal.NewFromFloat(q)).Round(4).Float64()
	return models.Num(p)
}
