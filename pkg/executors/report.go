package executors

import "github.com/yurifrl/invex/pkg/models"

// Status tells whether an extracted invoice is ready for import.
type Status int

const (
	Complete Status = iota
	Incomplete
)

func (s Status) String() string {
	if s == Complete {
		return "complete"
	}
	return "incomplete"
}

// Entry pairs an invoice with its status.
type Entry struct {
	Invoice models.Invoice
	Status  Status
}

type Report struct {
	Items      []Entry
	incomplete int
}

// BuildReport marks an invoice complete when it has an invoice number and at
// least one line item.
func BuildReport(invoices []models.Invoice) *Report {
	r := &Report{Items: make([]Entry, 0, len(invoices))}
	for _, inv := range invoices {
		status := Complete
		if inv.InvoiceNumber == nil || len(inv.LineItems) == 0 {
			status = Incomplete
			r.incomplete++
		}
		r.Items = append(r.Items, Entry{Invoice: inv, Status: status})
	}
	return r
}

func (r *Report) CompleteCount() int {
	return len(r.Items) - r.incomplete
}

func (r *Report) IncompleteCount() int {
	return r.incomplete
}
