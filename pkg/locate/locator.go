package locate

import (
	"strings"
	"time"

	"github.com/yurifrl/invex/pkg/grid"
)

const (
	DatePolicyFixed   = "fixed"
	DatePolicyRunDate = "run_date"
)

// Options configures the built-in fields.
type Options struct {
	DefaultCurrency   string
	AllowedCurrencies []string
	DefaultDate       string
	DatePolicy        string
	DateLayout        string
	ColumnLookahead   int
}

func DefaultOptions() Options {
	return Options{
		DefaultCurrency:   "EGP",
		AllowedCurrencies: DefaultCurrencies,
		DefaultDate:       "4/16/2025",
		DatePolicy:        DatePolicyFixed,
		DateLayout:        "1/2/2006",
		ColumnLookahead:   DefaultColumnLookahead,
	}
}

// Locator bundles the four header fields of an invoice.
type Locator struct {
	opts     Options
	now      func() time.Time
	invoice  Field
	customer Field
	currency Field
	date     Field
}

func New(opts Options) *Locator {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "EGP"
	}
	if opts.DateLayout == "" {
		opts.DateLayout = "1/2/2006"
	}

	l := &Locator{opts: opts, now: time.Now}
	l.invoice = InvoiceNumberField(opts.ColumnLookahead)
	l.customer = CustomerCodeField(opts.ColumnLookahead)
	l.currency = CurrencyField(opts.AllowedCurrencies, opts.DefaultCurrency, opts.ColumnLookahead)
	l.date = DateField(l.defaultDate, opts.ColumnLookahead)
	return l
}

// WithClock replaces the clock used by the run_date policy.
func (l *Locator) WithClock(now func() time.Time) *Locator {
	l.now = now
	return l
}

func (l *Locator) defaultDate() string {
	if strings.EqualFold(l.opts.DatePolicy, DatePolicyRunDate) {
		return l.now().Format(l.opts.DateLayout)
	}
	return l.opts.DefaultDate
}

// InvoiceNumber searches each grid in turn; the first grid with a hit wins.
func (l *Locator) InvoiceNumber(grids ...*grid.Grid) (string, bool) {
	return first(l.invoice, grids)
}

func (l *Locator) CustomerCode(grids ...*grid.Grid) (string, bool) {
	return first(l.customer, grids)
}

// Currency never fails; it falls back to the configured default.
func (l *Locator) Currency(grids ...*grid.Grid) string {
	if v, ok := first(l.currency, grids); ok {
		return v
	}
	return l.currency.Default()
}

// Date never fails; it falls back to the date policy.
func (l *Locator) Date(grids ...*grid.Grid) string {
	if v, ok := first(l.date, grids); ok {
		return v
	}
	return l.date.Default()
}

// Trace reports, per field, the match found on g and the tier it came from.
func (l *Locator) Trace(g *grid.Grid) []Match {
	out := make([]Match, 0, 4)
	for _, f := range []Field{l.invoice, l.customer, l.currency, l.date} {
		m, ok := Find(g, f)
		switch {
		case ok:
		case f.Default != nil:
			m = Match{Kind: f.Kind, Value: f.Default(), Tier: TierDefault, Row: -1, Col: -1}
		default:
			m = Match{Kind: f.Kind, Tier: TierNone, Row: -1, Col: -1}
		}
		out = append(out, m)
	}
	return out
}

func first(f Field, grids []*grid.Grid) (string, bool) {
	for _, g := range grids {
		if m, ok := Find(g, f); ok {
			return m.Value, true
		}
	}
	return "", false
}
