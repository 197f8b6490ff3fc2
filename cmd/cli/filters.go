package main

import (
	"strings"

	"github.com/yurifrl/invex/pkg/csv"
	"github.com/yurifrl/invex/pkg/models"
	"github.com/yurifrl/invex/pkg/output"
)

type filters struct {
	currency     string
	customer     string
	minTotal     float64
	maxTotal     float64
	completeOnly bool
}

func (f *filters) toFilterFunc() csv.FilterFunc[output.HeaderRow] {
	return func(h output.HeaderRow) bool {
		if f.currency != "" && !strings.EqualFold(h.CurrencyCode, f.currency) {
			return false
		}
		if f.customer != "" && !strings.EqualFold(h.CustomerCode, f.customer) {
			return false
		}
		if f.minTotal != 0 && h.TotalAmount < f.minTotal {
			return false
		}
		if f.maxTotal != 0 && h.TotalAmount > f.maxTotal {
			return false
		}
		if f.completeOnly && h.DocumentNumber == "" {
			return false
		}
		return true
	}
}

// apply keeps the invoices whose header row passes the filter.
func (f *filters) apply(invoices []models.Invoice, formatter *output.Formatter) []models.Invoice {
	headers, _ := formatter.Rows(invoices)
	keep := f.toFilterFunc()

	out := make([]models.Invoice, 0, len(invoices))
	for i, h := range headers {
		if !keep(h) {
			continue
		}
		if f.completeOnly && len(invoices[i].LineItems) == 0 {
			continue
		}
		out = append(out, invoices[i])
	}
	return out
}
