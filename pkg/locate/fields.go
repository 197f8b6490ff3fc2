package locate

import (
	"regexp"
	"strings"
)

var (
	invoicePattern = regexp.MustCompile(`^SI\d+$`)
	invoiceBare    = regexp.MustCompile(`\bSI\d+\b`)
	invoiceLoose   = regexp.MustCompile(`(?i)^SI[\s\-_/#.:]*(\d+)$`)

	customerPattern = regexp.MustCompile(`^C\d+$`)
	customerBare    = regexp.MustCompile(`\bC\d+\b`)
	customerLoose   = regexp.MustCompile(`(?i)^C[\s\-_/#.:]*(\d+)$`)

	datePattern = regexp.MustCompile(`^(\d{1,2}[/-]\d{1,2}[/-]\d{4})(?:\s+\d{1,2}:\d{2}(?::\d{2})?)?$`)
	dateBare    = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{4}\b`)
	dateLoose   = regexp.MustCompile(`\b(?:\d{1,2}[./-]\d{1,2}[./-]\d{4}|\d{4}-\d{2}-\d{2})\b`)
)

// Keyword tables. Mojibake variants are listed verbatim because the
// normalizer keeps them intact.
var (
	invoicePrimary = []string{
		"invoice n:", "invoice no", "invoice number", "invoice #", "invoice n°", "invoice nâ°",
		"inv no", "inv. no", "رقم الفاتورة", "فاتورة رقم", "ÑÞã ÇáÝÇÊæÑÉ", "ÝÇÊæÑÉ ÑÞã",
	}
	invoiceColumns   = []string{"Document Number", "Invoice Number", "Invoice No", "Invoice No.", "Doc No"}
	invoiceSecondary = []string{"invoice", "inv", "bill no", "document no", "فاتورة", "رقم المستند"}

	customerPrimary = []string{
		"partner code", "customer code", "client code", "account code",
		"partner id", "customer id", "client id",
		"رمز العميل", "كود العميل", "رقم العميل", "ßæÏ ÇáÚãíá", "ÑãÒ ÇáÚãíá",
	}
	customerColumns   = []string{"Customer Code", "Partner Code", "Client Code", "Customer"}
	customerSecondary = []string{"customer", "client", "partner", "account", "العميل", "عميل"}

	currencyPrimary   = []string{"currency", "curr.", "curr", "العملة", "عملة", "بعملة", "ÇáÚãáÉ"}
	currencyColumns   = []string{"Currency Code", "Currency"}
	currencySecondary = []string{"paid in", "payment in", "amount in", "prices in", "total", "المبلغ", "الإجمالي", "الاجمالي"}

	datePrimary   = []string{"invoice date", "date of invoice", "تاريخ الفاتورة", "التاريخ", "ÇáÊÇÑíÎ", "date:"}
	dateColumns   = []string{"Document Date", "Invoice Date", "Date"}
	dateSecondary = []string{"date", "dated", "issued", "تاريخ"}
)

func strictPattern(re *regexp.Regexp) func(string) (string, bool) {
	return func(s string) (string, bool) {
		s = strings.TrimSpace(s)
		return s, re.MatchString(s)
	}
}

// looseCode accepts separators and lowercase between the prefix and the
// digits, and returns the canonical prefix+digits form.
func looseCode(re *regexp.Regexp, prefix string) func(string) (string, bool) {
	return func(s string) (string, bool) {
		m := re.FindStringSubmatch(strings.TrimSpace(s))
		if m == nil {
			return "", false
		}
		return prefix + m[1], true
	}
}

func strictDate(s string) (string, bool) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func looseDate(s string) (string, bool) {
	if v, ok := strictDate(s); ok {
		return v, true
	}
	if m := dateLoose.FindString(s); m != "" {
		return m, true
	}
	return "", false
}

// InvoiceNumberField matches SI followed by digits.
func InvoiceNumberField(lookahead int) Field {
	return Field{
		Kind:            InvoiceNumber,
		Primary:         invoicePrimary,
		ColumnLabels:    invoiceColumns,
		Secondary:       invoiceSecondary,
		Strict:          strictPattern(invoicePattern),
		Bare:            invoiceBare,
		Loose:           looseCode(invoiceLoose, "SI"),
		ColumnLookahead: lookahead,
	}
}

// CustomerCodeField matches C followed by digits.
func CustomerCodeField(lookahead int) Field {
	return Field{
		Kind:            CustomerCode,
		Primary:         customerPrimary,
		ColumnLabels:    customerColumns,
		Secondary:       customerSecondary,
		Strict:          strictPattern(customerPattern),
		Bare:            customerBare,
		Loose:           looseCode(customerLoose, "C"),
		ColumnLookahead: lookahead,
	}
}

// CurrencyField resolves to one of the allowed codes, falling back to def.
func CurrencyField(allowed []string, def string, lookahead int) Field {
	r := newCurrencyResolver(allowed)
	return Field{
		Kind:         Currency,
		Primary:      currencyPrimary,
		ColumnLabels: currencyColumns,
		Secondary:    currencySecondary,
		Strict:       r.strict,
		Bare:         r.bare,
		Loose:        r.loose,
		Signals:      r.loose,
		Default: func() string {
			return strings.ToUpper(def)
		},
		ColumnLookahead: lookahead,
	}
}

// DateField matches d/m/yyyy style dates, returned as found.
func DateField(def func() string, lookahead int) Field {
	return Field{
		Kind:            Date,
		Primary:         datePrimary,
		ColumnLabels:    dateColumns,
		Secondary:       dateSecondary,
		Strict:          strictDate,
		Bare:            dateBare,
		Loose:           looseDate,
		Default:         def,
		ColumnLookahead: lookahead,
	}
}
