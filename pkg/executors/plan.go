package executors

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/yurifrl/invex/pkg/plan"
)

// Plan extracts every workbook of p and prints a preview without writing
// anything.
func (e *Executor) Plan(p *plan.Plan) error {
	completeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))  // green
	incompleteStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red
	fileStyle := lipgloss.NewStyle().Bold(true)

	var complete, incomplete int
	for _, wb := range p.Workbooks {
		file, err := wb.File()
		if err != nil {
			return err
		}
		out, err := wb.Output(p.OutputDir)
		if err != nil {
			return err
		}
		e.logger.Debug("planning workbook", "file", file)

		invoices, err := e.processor.ProcessFile(file)
		if err != nil {
			return err
		}
		report := BuildReport(invoices)
		complete += report.CompleteCount()
		incomplete += report.IncompleteCount()

		fmt.Fprintln(e.out, fileStyle.Render(fmt.Sprintf("%s -> %s", file, out)))
		for _, entry := range report.Items {
			inv := entry.Invoice
			number := inv.Number()
			if number == "" {
				number = "-"
			}
			line := fmt.Sprintf("%-20s | %-10s | %-10s | %s | %3d items | %10.2f",
				inv.SourceSheet, number, inv.Customer(), inv.Currency, len(inv.LineItems), inv.TotalAmount)
			if entry.Status == Complete {
				fmt.Fprintln(e.out, completeStyle.Render("+ "+line))
				continue
			}
			fmt.Fprintln(e.out, incompleteStyle.Render("! "+line))
		}
	}

	fmt.Fprintf(e.out, "\nPlan: %d invoice(s) complete, %d incomplete\n", complete, incomplete)
	return nil
}
