package executors

import (
	"github.com/yurifrl/invex/pkg/plan"
)

// Apply converts every workbook of p and writes its output workbook.
func (e *Executor) Apply(p *plan.Plan) error {
	e.logger.Debug("applying plan", "workbooks", len(p.Workbooks))

	for _, wb := range p.Workbooks {
		file, err := wb.File()
		if err != nil {
			return err
		}
		out, err := wb.Output(p.OutputDir)
		if err != nil {
			return err
		}

		invoices, err := e.processor.ProcessFile(file)
		if err != nil {
			return err
		}
		if err := e.processor.WriteFile(out, invoices); err != nil {
			return err
		}

		report := BuildReport(invoices)
		e.logger.Info("wrote workbook",
			"file", file,
			"output", out,
			"complete", report.CompleteCount(),
			"incomplete", report.IncompleteCount(),
		)
	}

	return nil
}
