package models

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product or service row of an invoice.
type LineItem struct {
	Description string `json:"description"`
	Quantity    Value  `json:"quantity"`
	UnitPrice   Value  `json:"unit_price"`
	ItemCode    string `json:"item_code,omitempty"`
	// Placeholder marks weight/packaging rows kept with quantity 1 and price 0.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Invoice is the record extracted from one worksheet.
type Invoice struct {
	InvoiceNumber *string    `json:"invoice_number"`
	CustomerCode  *string    `json:"customer_code"`
	Currency      string     `json:"currency"`
	InvoiceDate   string     `json:"invoice_date"`
	TotalAmount   float64    `json:"total_amount"`
	LineItems     []LineItem `json:"line_items"`
	SourceSheet   string     `json:"source_sheet_name"`
}

// NewInvoice returns an invoice for the given sheet with an empty item list.
func NewInvoice(sheet string) *Invoice {
	return &Invoice{SourceSheet: sheet, LineItems: []LineItem{}}
}

// Number returns the invoice number or "" when absent.
func (i *Invoice) Number() string {
	if i.InvoiceNumber == nil {
		return ""
	}
	return *i.InvoiceNumber
}

// Customer returns the customer code or "" when absent.
func (i *Invoice) Customer() string {
	if i.CustomerCode == nil {
		return ""
	}
	return *i.CustomerCode
}

// SetItems replaces the line items and recomputes the total.
func (i *Invoice) SetItems(items []LineItem) {
	if items == nil {
		items = []LineItem{}
	}
	i.LineItems = items
	i.Recompute()
}

// Recompute derives TotalAmount from LineItems.
func (i *Invoice) Recompute() {
	i.TotalAmount = CalculateTotal(i.LineItems)
}

// CalculateTotal sums quantity*unit price over items whose quantity and price
// are numeric and whose price is positive, rounded to two places.
func CalculateTotal(items []LineItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		qty, ok := item.Quantity.Float()
		if !ok {
			continue
		}
		price, ok := item.UnitPrice.Float()
		if !ok || price <= 0 {
			continue
		}
		total = total.Add(decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(price)))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
