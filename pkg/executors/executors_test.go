package executors

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yurifrl/invex/pkg/config"
	"github.com/yurifrl/invex/pkg/models"
	"github.com/yurifrl/invex/pkg/plan"
	"github.com/yurifrl/invex/pkg/service"
)

func TestBuildReport(t *testing.T) {
	complete := models.NewInvoice("A")
	complete.InvoiceNumber = models.StringPtr("SI1")
	complete.SetItems([]models.LineItem{{Description: "x", Quantity: models.Num(1), UnitPrice: models.Num(2)}})

	noItems := models.NewInvoice("B")
	noItems.InvoiceNumber = models.StringPtr("SI2")

	noNumber := models.NewInvoice("C")
	noNumber.SetItems(complete.LineItems)

	r := BuildReport([]models.Invoice{*complete, *noItems, *noNumber})

	require.Len(t, r.Items, 3)
	assert.Equal(t, 1, r.CompleteCount())
	assert.Equal(t, 2, r.IncompleteCount())
	assert.Equal(t, Complete, r.Items[0].Status)
	assert.Equal(t, "incomplete", r.Items[1].Status.String())
}

func newExecutor(t *testing.T) *Executor {
	t.Helper()
	logger := log.New(io.Discard)
	p, err := service.NewProcessor(config.Default(), logger)
	require.NoError(t, err)
	return New(logger, p)
}

func writeCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "april.csv")
	body := "INVOICE N:,SI00123\n\nDescription,Quantity,Unit price\nWidget A,3,10\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestPlanPreview(t *testing.T) {
	dir := t.TempDir()
	p := &plan.Plan{Workbooks: []plan.Workbook{{FilePath: writeCSV(t, dir)}}}
	var out bytes.Buffer

	require.NoError(t, newExecutor(t).WithOutput(&out).Plan(p))

	assert.Contains(t, out.String(), "SI00123")
	assert.Contains(t, out.String(), "Plan: 1 invoice(s) complete, 0 incomplete")
	assert.NoFileExists(t, filepath.Join(dir, "april-invex.xlsx"))
}

func TestApplyWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "converted")
	p := &plan.Plan{OutputDir: outDir, Workbooks: []plan.Workbook{{FilePath: writeCSV(t, dir)}}}

	require.NoError(t, newExecutor(t).Apply(p))

	assert.FileExists(t, filepath.Join(outDir, "april-invex.xlsx"))
}

func TestApplyFailsOnMissingFile(t *testing.T) {
	p := &plan.Plan{Workbooks: []plan.Workbook{{FilePath: filepath.Join(t.TempDir(), "nope.xlsx")}}}

	assert.Error(t, newExecutor(t).Apply(p))
}
