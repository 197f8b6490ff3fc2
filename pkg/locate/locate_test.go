package locate

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yurifrl/invex/pkg/grid"
)

var (
	siPattern = regexp.MustCompile(`^SI\d+$`)
	cPattern  = regexp.MustCompile(`^C\d+$`)
)

func sampleSheet() *grid.Grid {
	return grid.New([][]string{
		{"ACME Trading"},
		{},
		{"INVOICE N:", "SI00123"},
		{},
		{},
		{"Description", "Quantity", "Unit price"},
		{"Widget A", "3", "10"},
	})
}

func TestLocatorSampleSheet(t *testing.T) {
	l := New(DefaultOptions())
	g := sampleSheet()

	inv, ok := l.InvoiceNumber(g)
	require.True(t, ok)
	assert.Equal(t, "SI00123", inv)

	_, ok = l.CustomerCode(g)
	assert.False(t, ok)

	assert.Equal(t, "EGP", l.Currency(g))
	assert.Equal(t, "4/16/2025", l.Date(g))
}

func TestLocatorNoKeyword(t *testing.T) {
	l := New(DefaultOptions())
	g := grid.New([][]string{
		{"Delivery note"},
		{"Item", "Qty"},
		{"Bolt", "4"},
	})

	_, ok := l.InvoiceNumber(g)
	assert.False(t, ok)
	assert.Equal(t, "EGP", l.Currency(g))
}

func TestInvoiceNumberTiers(t *testing.T) {
	f := InvoiceNumberField(DefaultColumnLookahead)

	tests := []struct {
		name string
		rows [][]string
		want string
		tier Tier
	}{
		{
			name: "same cell",
			rows: [][]string{{"Invoice No: SI00456"}},
			want: "SI00456",
			tier: TierPrimary,
		},
		{
			name: "cell below",
			rows: [][]string{{"Invoice Number", ""}, {"SI42", ""}},
			want: "SI42",
			tier: TierPrimary,
		},
		{
			name: "protected anchor",
			rows: [][]string{{"INVOICE NÂ°:", "SI00077"}},
			want: "SI00077",
			tier: TierPrimary,
		},
		{
			name: "column label",
			rows: [][]string{{"Document Number", "Description"}, {"", "Bolt"}, {"SI789", "Nut"}},
			want: "SI789",
			tier: TierColumn,
		},
		{
			name: "trailing punctuation after keyword",
			rows: [][]string{{"Invoice No.", "SI5"}},
			want: "SI5",
			tier: TierPrimary,
		},
		{
			name: "bare pattern",
			rows: [][]string{{"Ref", "shipment SI00999 / March"}},
			want: "SI00999",
			tier: TierBare,
		},
		{
			name: "secondary keyword normalizes loose value",
			rows: [][]string{{"Invoice: si-00321"}},
			want: "SI00321",
			tier: TierSecondary,
		},
		{
			name: "arabic keyword",
			rows: [][]string{{"رقم الفاتورة", "SI2025"}},
			want: "SI2025",
			tier: TierPrimary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Find(grid.New(tt.rows), f)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.Value)
			assert.Equal(t, tt.tier, m.Tier)
			assert.Regexp(t, siPattern, m.Value)
		})
	}
}

func TestOnlyFirstKeywordOccurrenceIsTried(t *testing.T) {
	g := grid.New([][]string{
		{"INVOICE N:", "pending"},
		{},
		{},
		{"INVOICE N:", "SI1"},
	})

	m, ok := Find(g, InvoiceNumberField(DefaultColumnLookahead))
	require.True(t, ok)
	assert.Equal(t, "SI1", m.Value)
	assert.Equal(t, TierBare, m.Tier)
	assert.Equal(t, 3, m.Row)
	assert.Equal(t, 1, m.Col)
}

func TestStrictRejectsMalformedValues(t *testing.T) {
	g := grid.New([][]string{{"INVOICE N:", "SI-12A"}, {"N/A", ""}})

	_, ok := Find(g, InvoiceNumberField(DefaultColumnLookahead))
	assert.False(t, ok)
}

func TestColumnLookaheadIsBounded(t *testing.T) {
	rows := [][]string{{"Customer Code"}}
	for i := 0; i < 25; i++ {
		rows = append(rows, []string{""})
	}
	rows = append(rows, []string{"C100"})
	g := grid.New(rows)

	_, ok := Find(g, Field{Kind: CustomerCode, ColumnLabels: customerColumns, Strict: strictPattern(cPattern), ColumnLookahead: 20})
	assert.False(t, ok)
}

func TestCustomerCode(t *testing.T) {
	l := New(DefaultOptions())

	tests := []struct {
		name string
		rows [][]string
		want string
	}{
		{"right neighbor", [][]string{{"Partner code:", "C1001"}}, "C1001"},
		{"below", [][]string{{"Customer Code", "x"}, {"C55", ""}}, "C55"},
		{"mojibake anchor", [][]string{{"ßæÏ ÇáÚãíá", "C77"}}, "C77"},
		{"secondary loose", [][]string{{"Client", "c-0042"}}, "C0042"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.CustomerCode(grid.New(tt.rows))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, cPattern, got)
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		def     string
		rows    [][]string
		want    string
	}{
		{"keyword right", nil, "EGP", [][]string{{"Currency:", "USD"}}, "USD"},
		{"keyword same cell", nil, "EGP", [][]string{{"Currency: eur"}}, "EUR"},
		{"arabic keyword and word", nil, "USD", [][]string{{"العملة", "جنيه مصري"}}, "EGP"},
		{"column label", nil, "EGP", [][]string{{"Currency Code"}, {"USD"}}, "USD"},
		{"outside closed set", nil, "EGP", [][]string{{"Currency", "JPY"}}, "EGP"},
		{"symbol signal", nil, "EGP", [][]string{{"Total", "€ 1,200"}}, "EUR"},
		{"demonym signal", nil, "USD", [][]string{{"Made in Egypt"}}, "EGP"},
		{"pound sign without sterling", nil, "USD", [][]string{{"Price", "£ 40"}}, "EGP"},
		{"pound sign with sterling", []string{"EGP", "USD", "EUR", "GBP"}, "USD", [][]string{{"Price", "£ 40"}}, "GBP"},
		{"nothing", nil, "EGP", [][]string{{"Widget", "3"}}, "EGP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.DefaultCurrency = tt.def
			if tt.allowed != nil {
				opts.AllowedCurrencies = tt.allowed
			}
			l := New(opts)
			assert.Equal(t, tt.want, l.Currency(grid.New(tt.rows)))
		})
	}
}

func TestDate(t *testing.T) {
	l := New(DefaultOptions())

	assert.Equal(t, "16/04/2025", l.Date(grid.New([][]string{{"Invoice Date", "16/04/2025"}})))
	assert.Equal(t, "3-5-2024", l.Date(grid.New([][]string{{"Date: 3-5-2024"}})))
	assert.Equal(t, "16.04.2025", l.Date(grid.New([][]string{{"Date", "16.04.2025"}})))
	assert.Equal(t, "01/02/2025", l.Date(grid.New([][]string{{"Issued on 01/02/2025 by"}})))
	assert.Equal(t, "4/16/2025", l.Date(grid.New([][]string{{"no date here"}})))
}

func TestDateRunDatePolicy(t *testing.T) {
	opts := DefaultOptions()
	opts.DatePolicy = DatePolicyRunDate
	l := New(opts).WithClock(func() time.Time {
		return time.Date(2025, time.May, 3, 10, 0, 0, 0, time.UTC)
	})

	assert.Equal(t, "5/3/2025", l.Date(grid.New([][]string{{"nothing"}})))
}

func TestLocatorPrefersFirstGridWithResult(t *testing.T) {
	l := New(DefaultOptions())
	original := grid.New([][]string{{"ÑÞã ÇáÝÇÊæÑÉ"}, {"SI10"}})
	empty := grid.New([][]string{{"nothing"}})

	got, ok := l.InvoiceNumber(empty, original)
	require.True(t, ok)
	assert.Equal(t, "SI10", got)
}

func TestTrace(t *testing.T) {
	l := New(DefaultOptions())

	trace := l.Trace(sampleSheet())
	require.Len(t, trace, 4)

	assert.Equal(t, InvoiceNumber, trace[0].Kind)
	assert.Equal(t, TierPrimary, trace[0].Tier)
	assert.Equal(t, 2, trace[0].Row)
	assert.Equal(t, 1, trace[0].Col)

	assert.Equal(t, TierNone, trace[1].Tier)
	assert.Equal(t, TierDefault, trace[2].Tier)
	assert.Equal(t, "EGP", trace[2].Value)
	assert.Equal(t, TierDefault, trace[3].Tier)
}
