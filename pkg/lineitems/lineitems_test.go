package lineitems

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yurifrl/invex/pkg/grid"
	"github.com/yurifrl/invex/pkg/models"
)

func newExtractor(opts Options) *Extractor {
	return New(opts, log.New(io.Discard))
}

func widgetRows() [][]string {
	return [][]string{
		{"ACME Trading"},
		{},
		{"INVOICE N:", "SI00123"},
		{},
		{},
		{"Description", "Quantity", "Unit price"},
		{"Widget A", "3", "10"},
	}
}

func TestExtractWidgetTable(t *testing.T) {
	e := newExtractor(DefaultOptions())

	res := e.Run("SI00123", grid.New(widgetRows()))

	require.Len(t, res.Items, 1)
	assert.Equal(t, "free_floating_header", res.Strategy)
	item := res.Items[0]
	assert.Equal(t, "Widget A", item.Description)
	assert.Equal(t, models.Num(3), item.Quantity)
	assert.Equal(t, models.Num(10), item.UnitPrice)
	assert.Equal(t, 30.0, models.CalculateTotal(res.Items))
}

func TestWeightRowBecomesPlaceholder(t *testing.T) {
	rows := append(widgetRows(), []string{"Total weight (kg)", "120"})

	items := newExtractor(DefaultOptions()).Extract(grid.New(rows), "")

	require.Len(t, items, 2)
	weight := items[1]
	assert.Equal(t, "Total weight (kg)", weight.Description)
	assert.True(t, weight.Placeholder)
	assert.Equal(t, models.Num(1), weight.Quantity)
	assert.Equal(t, models.Num(0), weight.UnitPrice)
	assert.Equal(t, 30.0, models.CalculateTotal(items))
}

func TestPlaceholdersCanBeDropped(t *testing.T) {
	rows := append(widgetRows(), []string{"Total weight (kg)", "120"})
	opts := DefaultOptions()
	opts.CapturePlaceholders = false

	items := newExtractor(opts).Extract(grid.New(rows), "")

	require.Len(t, items, 1)
	assert.Equal(t, "Widget A", items[0].Description)
}

func TestLabeledSection(t *testing.T) {
	g := grid.New([][]string{
		{"Invoice Details"},
		{},
		{"Item Code", "Description", "Qty", "Unit Price", "Amount"},
		{"A1", "Bolt", "10", "1,250.50", "12505"},
		{"A2", "Nut", "5", "", "50"},
		{},
		{"Notes", "thank you"},
	})

	res := newExtractor(DefaultOptions()).Run("", g)

	assert.Equal(t, "labeled_section", res.Strategy)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "A1", res.Items[0].ItemCode)
	assert.Equal(t, "Bolt", res.Items[0].Description)
	assert.Equal(t, models.Num(10), res.Items[0].Quantity)
	assert.Equal(t, models.Num(1250.5), res.Items[0].UnitPrice)
	assert.Equal(t, models.Num(10), res.Items[1].UnitPrice, "price derived from amount")
}

func TestMojibakeArabicHeaders(t *testing.T) {
	g := grid.New([][]string{
		{"ÇáÊÓãíÉ", "ÇáßãíÉ", "ÓÚÑ ÇáæÍÏÉ"},
		{"Widget B", "2", "7.5"},
	})

	items := newExtractor(DefaultOptions()).Extract(g, "")

	require.Len(t, items, 1)
	assert.Equal(t, models.Num(2), items[0].Quantity)
	assert.Equal(t, models.Num(7.5), items[0].UnitPrice)
}

func TestArabicHeaders(t *testing.T) {
	g := grid.New([][]string{
		{"البند", "الكمية", "سعر الوحدة"},
		{"مسامير", "١٠", "2.5"},
	})

	items := newExtractor(DefaultOptions()).Extract(g, "")

	require.Len(t, items, 1)
	assert.Equal(t, "مسامير", items[0].Description)
	assert.Equal(t, models.Num(10), items[0].Quantity)
}

func TestFixedColumnRejectsStrayRows(t *testing.T) {
	rows := [][]string{
		{"Document Number", "Internal Code", "Description", "Unit Type", "Quantity", "Unit Price"},
		{"SI100", "1", "Cable", "", "2", "15"},
		{"12345", "1", "Stray", "", "1", "99"},
		{"SI200", "1", "Other", "", "1", "5"},
	}
	e := newExtractor(DefaultOptions())

	res := e.Run("SI100", grid.New(rows))
	assert.Equal(t, "fixed_column", res.Strategy)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Cable", res.Items[0].Description)

	res = e.Run("", grid.New(rows))
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Cable", res.Items[0].Description)
	assert.Equal(t, "Other", res.Items[1].Description)
}

func TestNumericRowFallback(t *testing.T) {
	g := grid.New([][]string{
		{"Order for", "ACME"},
		{"Steel pipe 2in", "4", "25.5"},
		{"SI00123", "Bolt", "3", "2"},
		{"Phone", "0123"},
	})

	res := newExtractor(DefaultOptions()).Run("", g)

	assert.Equal(t, "numeric_row", res.Strategy)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Steel pipe 2in", res.Items[0].Description)
	assert.Equal(t, models.Num(4), res.Items[0].Quantity)
	assert.Equal(t, models.Num(25.5), res.Items[0].UnitPrice)
	assert.Equal(t, "Bolt", res.Items[1].Description)
}

func TestRowRules(t *testing.T) {
	g := grid.New([][]string{
		{"Description", "Quantity", "Unit price"},
		{"Widget A", "3", "10"},
		{"Gift", "1", "0"},
		{"Credit", "1", "-5"},
		{"Sample", "n/a", "4"},
		{"Unpriced", "2", "TBD"},
		{},
		{"After blank", "1", "5"},
	})

	items := newExtractor(DefaultOptions()).Extract(g, "")

	require.Len(t, items, 2)
	assert.Equal(t, "Widget A", items[0].Description)
	assert.Equal(t, "Sample", items[1].Description)
	assert.Equal(t, models.Text("n/a"), items[1].Quantity)
	for _, item := range items {
		p, ok := item.UnitPrice.Float()
		assert.True(t, item.Placeholder || (ok && p > 0))
	}
}

func TestRepeatedHeaderKeywordEndsTable(t *testing.T) {
	g := grid.New([][]string{
		{"Description", "Quantity", "Unit price"},
		{"Widget A", "3", "10"},
		{"Description", "", ""},
		{"Bolt", "1", "5"},
	})

	items := newExtractor(DefaultOptions()).Extract(g, "")

	require.Len(t, items, 1)
	assert.Equal(t, "Widget A", items[0].Description)
}

func TestFreeFloatingRowWindow(t *testing.T) {
	rows := [][]string{{"Description", "Quantity", "Unit price"}}
	for i := 0; i < 40; i++ {
		rows = append(rows, []string{fmt.Sprintf("Item %d", i), "1", "2"})
	}
	opts := DefaultOptions()
	opts.RowWindow = 30

	items := newExtractor(opts).Extract(grid.New(rows), "")

	assert.Len(t, items, 30)
}

func TestFuzzyHeaders(t *testing.T) {
	rows := [][]string{
		{"Descripton", "Quantitiy", "Unit price"},
		{"Widget A", "3", "10"},
	}

	res := newExtractor(DefaultOptions()).Run("", grid.New(rows))
	assert.Equal(t, "free_floating_header", res.Strategy)
	require.Len(t, res.Items, 1)

	opts := DefaultOptions()
	opts.FuzzyHeaders = false
	res = newExtractor(opts).Run("", grid.New(rows))
	assert.Equal(t, "numeric_row", res.Strategy)
	require.Len(t, res.Items, 1)
}

func TestExtractNothing(t *testing.T) {
	items := newExtractor(DefaultOptions()).Extract(grid.New([][]string{{"just a note"}}), "")

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

type stubStrategy struct {
	name  string
	items []models.LineItem
	calls *int
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) TryExtract(*grid.Grid, string) ([]models.LineItem, bool) {
	*s.calls++
	return s.items, len(s.items) > 0
}

func TestFirstSuccessfulStrategyWins(t *testing.T) {
	var first, second, third int
	e := NewWithStrategies(log.New(io.Discard),
		stubStrategy{name: "empty", calls: &first},
		stubStrategy{name: "hit", items: []models.LineItem{{Description: "x"}}, calls: &second},
		stubStrategy{name: "never", items: []models.LineItem{{Description: "y"}}, calls: &third},
	)

	res := e.Run("", grid.New([][]string{{"a"}}))

	assert.Equal(t, "hit", res.Strategy)
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 0, third)
}

func TestRunPrefersFirstGridWithItems(t *testing.T) {
	e := newExtractor(DefaultOptions())
	empty := grid.New([][]string{{"nothing"}})

	res := e.Run("", empty, grid.New(widgetRows()))

	require.Len(t, res.Items, 1)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want models.Value
	}{
		{"1,250.50", models.Num(1250.5)},
		{" 12 ", models.Num(12)},
		{"١٢٣", models.Num(123)},
		{"1 000", models.Num(1000)},
		{"n/a", models.Text("n/a")},
		{"Inf", models.Text("Inf")},
		{"", models.Text("")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseValue(tt.in), "input %q", tt.in)
	}

	assert.Equal(t, models.Num(1250.5), ParsePrice("EGP 1,250.50"))
	assert.Equal(t, models.Num(12), ParsePrice("$12"))
	assert.Equal(t, models.Text("free"), ParsePrice("free"))
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(DefaultVocabularies, false)

	assert.Equal(t, RoleCode, c.Classify("Item Code"))
	assert.Equal(t, RoleDescription, c.Classify("Item"))
	assert.Equal(t, RoleAmount, c.Classify("Total Price"))
	assert.Equal(t, RolePrice, c.Classify("Unit Price (EGP)"))
	assert.Equal(t, RoleQuantity, c.Classify("Qty:"))
	assert.Equal(t, RoleNone, c.Classify("Unit Type"))
	assert.Equal(t, RoleNone, c.Classify("Separate"))
	assert.True(t, c.IsHeaderTerm("Description:"))
	assert.False(t, c.IsHeaderTerm("Widget"))
	assert.True(t, IsPlaceholder("TOTAL PACKAGES"))
}
