// Package output lays invoices out as the two fixed-schema tables consumed
// downstream: one Header row per invoice and one Items row per line item.
package output

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yurifrl/invex/pkg/models"
)

const (
	HeaderSheet = "Header"
	ItemsSheet  = "Items"
)

var HeaderColumns = []string{
	"Document Type", "Document Number", "Document Date", "Customer Code", "Currency Code",
	"Exchange Rate", "Extra Discount", "Activity Code", "Total Amount",
}

var ItemColumns = []string{
	"Document Number", "Internal Code", "Description", "Unit Type", "Quantity",
	"Unit Price", "Discount Amount", "Value Difference", "Item Discount",
}

// DefaultRates are the fixed exchange rates; any other currency maps to 0.
var DefaultRates = map[string]float64{"USD": 52, "EUR": 60}

type HeaderRow struct {
	DocumentType   string  `json:"document_type"`
	DocumentNumber string  `json:"document_number"`
	DocumentDate   string  `json:"document_date"`
	CustomerCode   string  `json:"customer_code"`
	CurrencyCode   string  `json:"currency_code"`
	ExchangeRate   float64 `json:"exchange_rate"`
	ExtraDiscount  string  `json:"extra_discount"`
	ActivityCode   string  `json:"activity_code"`
	TotalAmount    float64 `json:"total_amount"`
}

func (h HeaderRow) Values() []any {
	return []any{
		h.DocumentType, h.DocumentNumber, h.DocumentDate, h.CustomerCode, h.CurrencyCode,
		h.ExchangeRate, h.ExtraDiscount, h.ActivityCode, h.TotalAmount,
	}
}

func (h HeaderRow) Fields() []string {
	return stringify(h.Values())
}

type ItemRow struct {
	DocumentNumber  string       `json:"document_number"`
	InternalCode    string       `json:"internal_code"`
	Description     string       `json:"description"`
	UnitType        string       `json:"unit_type"`
	Quantity        models.Value `json:"quantity"`
	UnitPrice       models.Value `json:"unit_price"`
	DiscountAmount  string       `json:"discount_amount"`
	ValueDifference string       `json:"value_difference"`
	ItemDiscount    string       `json:"item_discount"`
}

func (i ItemRow) Values() []any {
	return []any{
		i.DocumentNumber, i.InternalCode, i.Description, i.UnitType, cellValue(i.Quantity),
		cellValue(i.UnitPrice), i.DiscountAmount, i.ValueDifference, i.ItemDiscount,
	}
}

func (i ItemRow) Fields() []string {
	return stringify(i.Values())
}

// Formatter turns invoices into Header and Items rows.
type Formatter struct {
	Rates        map[string]float64
	DocumentType string
}

func NewFormatter(rates map[string]float64, documentType string) *Formatter {
	if rates == nil {
		rates = DefaultRates
	}
	if documentType == "" {
		documentType = "I"
	}
	return &Formatter{Rates: rates, DocumentType: documentType}
}

// ExchangeRate looks the currency up in the fixed table.
func (f *Formatter) ExchangeRate(currency string) float64 {
	return f.Rates[strings.ToUpper(strings.TrimSpace(currency))]
}

func (f *Formatter) Rows(invoices []models.Invoice) ([]HeaderRow, []ItemRow) {
	headers := make([]HeaderRow, 0, len(invoices))
	var items []ItemRow
	for _, inv := range invoices {
		number := inv.Number()
		headers = append(headers, HeaderRow{
			DocumentType:   f.DocumentType,
			DocumentNumber: number,
			DocumentDate:   inv.InvoiceDate,
			CustomerCode:   inv.Customer(),
			CurrencyCode:   inv.Currency,
			ExchangeRate:   f.ExchangeRate(inv.Currency),
			ExtraDiscount:  "0",
			ActivityCode:   "",
			TotalAmount:    inv.TotalAmount,
		})
		for _, item := range inv.LineItems {
			items = append(items, ItemRow{
				DocumentNumber:  number,
				InternalCode:    "1",
				Description:     item.Description,
				UnitType:        "",
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
				DiscountAmount:  "0",
				ValueDifference: "0",
				ItemDiscount:    "0",
			})
		}
	}
	return headers, items
}

// WriteXLSX writes the Header and Items sheets as an xlsx workbook.
func (f *Formatter) WriteXLSX(w io.Writer, invoices []models.Invoice) error {
	headers, items := f.Rows(invoices)

	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", HeaderSheet); err != nil {
		return fmt.Errorf("error naming header sheet: %w", err)
	}
	if _, err := book.NewSheet(ItemsSheet); err != nil {
		return fmt.Errorf("error creating items sheet: %w", err)
	}

	bold, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	headerRows := make([][]any, len(headers))
	for i, h := range headers {
		headerRows[i] = h.Values()
	}
	if err := writeSheet(book, HeaderSheet, HeaderColumns, headerRows, bold); err != nil {
		return err
	}

	itemRows := make([][]any, len(items))
	for i, it := range items {
		itemRows[i] = it.Values()
	}
	if err := writeSheet(book, ItemsSheet, ItemColumns, itemRows, bold); err != nil {
		return err
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// XLSX returns the workbook bytes.
func (f *Formatter) XLSX(invoices []models.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.WriteXLSX(&buf, invoices); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(book *excelize.File, sheet string, columns []string, rows [][]any, style int) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("error writing %s header: %w", sheet, err)
	}
	if err := book.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("error styling %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("error writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cellValue(v models.Value) any {
	if f, ok := v.Float(); ok {
		return f
	}
	return v.Text
}

func stringify(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}
