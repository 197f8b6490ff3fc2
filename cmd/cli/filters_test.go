package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yurifrl/invex/pkg/models"
	"github.com/yurifrl/invex/pkg/output"
)

func invoice(number, currency string, total float64) models.Invoice {
	inv := models.NewInvoice("Sheet1")
	if number != "" {
		inv.InvoiceNumber = models.StringPtr(number)
	}
	inv.Currency = currency
	if total > 0 {
		inv.SetItems([]models.LineItem{{Description: "x", Quantity: models.Num(1), UnitPrice: models.Num(total)}})
	}
	return *inv
}

func TestFilters(t *testing.T) {
	invoices := []models.Invoice{
		invoice("SI1", "USD", 100),
		invoice("SI2", "EGP", 10),
		invoice("", "USD", 50),
		invoice("SI4", "USD", 0),
	}
	formatter := output.NewFormatter(nil, "")

	tests := []struct {
		name   string
		filter filters
		want   []string
	}{
		{"none", filters{}, []string{"SI1", "SI2", "", "SI4"}},
		{"currency", filters{currency: "usd"}, []string{"SI1", "", "SI4"}},
		{"min total", filters{minTotal: 20}, []string{"SI1", ""}},
		{"max total", filters{maxTotal: 60}, []string{"SI2", "", "SI4"}},
		{"complete", filters{completeOnly: true}, []string{"SI1", "SI2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.apply(invoices, formatter)

			numbers := make([]string, len(got))
			for i, inv := range got {
				numbers[i] = inv.Number()
			}
			assert.Equal(t, tt.want, numbers)
		})
	}
}
