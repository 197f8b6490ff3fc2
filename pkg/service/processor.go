package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/invex/pkg/config"
	"github.com/yurifrl/invex/pkg/grid"
	"github.com/yurifrl/invex/pkg/lineitems"
	"github.com/yurifrl/invex/pkg/locate"
	"github.com/yurifrl/invex/pkg/models"
	"github.com/yurifrl/invex/pkg/normalize"
	"github.com/yurifrl/invex/pkg/output"
	"github.com/yurifrl/invex/pkg/parser"
)

const (
	ModeOff      = "off"
	ModeFallback = "fallback"
	ModeAlways   = "always"

	outputSuffix = "-invex.xlsx"
)

// SheetError records why a worksheet was skipped.
type SheetError struct {
	Sheet string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// Result holds the invoices of a workbook and the sheets that were skipped.
type Result struct {
	Invoices []models.Invoice
	Skipped  []*SheetError
}

type Processor struct {
	config     *config.Config
	logger     *log.Logger
	parser     *parser.Parser
	locator    *locate.Locator
	extractor  *lineitems.Extractor
	normalizer *normalize.Normalizer
	formatter  *output.Formatter
}

func NewProcessor(cfg *config.Config, logger *log.Logger) (*Processor, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	norm, err := normalize.New(normalize.Options{
		SourceEncoding: cfg.Normalize.SourceEncoding,
		TargetEncoding: cfg.Normalize.TargetEncoding,
		Protected:      cfg.Normalize.Protected,
	})
	if err != nil {
		return nil, fmt.Errorf("error building normalizer: %w", err)
	}

	extractOpts := lineitems.DefaultOptions()
	extractOpts.SectionLookahead = cfg.Extraction.SectionLookahead
	extractOpts.RowWindow = cfg.Extraction.RowWindow
	extractOpts.CapturePlaceholders = cfg.Extraction.CapturePlaceholders
	extractOpts.FuzzyHeaders = cfg.Extraction.FuzzyHeaders

	return &Processor{
		config: cfg,
		logger: logger,
		parser: parser.New(logger),
		locator: locate.New(locate.Options{
			DefaultCurrency:   cfg.Currency.Default,
			AllowedCurrencies: cfg.Currency.Allowed,
			DefaultDate:       cfg.Date.Default,
			DatePolicy:        cfg.Date.Policy,
			DateLayout:        cfg.Date.Layout,
			ColumnLookahead:   cfg.Extraction.ColumnLookahead,
		}),
		extractor:  lineitems.New(extractOpts, logger),
		normalizer: norm,
		formatter:  output.NewFormatter(cfg.Output.ExchangeRates, cfg.Output.DocumentType),
	}, nil
}

// WithExtractor replaces the line-item extractor.
func (p *Processor) WithExtractor(e *lineitems.Extractor) *Processor {
	p.extractor = e
	return p
}

// WithLocator replaces the header field locator.
func (p *Processor) WithLocator(l *locate.Locator) *Processor {
	p.locator = l
	return p
}

func (p *Processor) Formatter() *output.Formatter {
	return p.formatter
}

func (p *Processor) Locator() *locate.Locator {
	return p.locator
}

// ProcessSheets returns one invoice per sheet that could be processed, in
// workbook order.
func (p *Processor) ProcessSheets(sheets []grid.Sheet) []models.Invoice {
	return p.Process(sheets).Invoices
}

// Process runs every sheet in order. A sheet that fails is logged and skipped;
// it never affects the others.
func (p *Processor) Process(sheets []grid.Sheet) Result {
	res := Result{Invoices: []models.Invoice{}}
	for _, sheet := range sheets {
		inv, err := p.processSheet(sheet)
		if err != nil {
			var sheetErr *SheetError
			if !errors.As(err, &sheetErr) {
				sheetErr = &SheetError{Sheet: sheet.Name, Err: err}
			}
			p.logger.Warn("skipping sheet", "sheet", sheet.Name, "error", sheetErr.Err)
			res.Skipped = append(res.Skipped, sheetErr)
			continue
		}
		res.Invoices = append(res.Invoices, *inv)
	}
	return res
}

func (p *Processor) processSheet(sheet grid.Sheet) (inv *models.Invoice, err error) {
	defer func() {
		if r := recover(); r != nil {
			inv = nil
			err = &SheetError{Sheet: sheet.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if sheet.Grid == nil {
		return nil, &SheetError{Sheet: sheet.Name, Err: errors.New("sheet has no grid")}
	}
	return p.ExtractSheet(sheet), nil
}

// ExtractSheet builds the invoice of a single sheet. It does not recover
// panics; use Process for fault isolation.
func (p *Processor) ExtractSheet(sheet grid.Sheet) *models.Invoice {
	grids := p.grids(sheet.Grid)
	inv := models.NewInvoice(sheet.Name)

	if number, ok := p.locator.InvoiceNumber(grids...); ok {
		inv.InvoiceNumber = models.StringPtr(number)
	}
	if customer, ok := p.locator.CustomerCode(grids...); ok {
		inv.CustomerCode = models.StringPtr(customer)
	}
	inv.Currency = p.locator.Currency(grids...)
	inv.InvoiceDate = p.locator.Date(grids...)

	res := p.extractor.Run(inv.Number(), grids...)
	inv.SetItems(res.Items)

	p.logger.Debug("extracted sheet",
		"sheet", sheet.Name,
		"invoice", inv.Number(),
		"customer", inv.Customer(),
		"currency", inv.Currency,
		"items", len(inv.LineItems),
		"strategy", res.Strategy,
	)
	return inv
}

// grids orders the original and repaired views of g according to the
// normalization mode.
func (p *Processor) grids(g *grid.Grid) []*grid.Grid {
	switch strings.ToLower(p.config.Normalize.Mode) {
	case ModeOff:
		return []*grid.Grid{g}
	case ModeAlways:
		return []*grid.Grid{p.normalizer.Grid(g)}
	default:
		return []*grid.Grid{g, p.normalizer.Grid(g)}
	}
}

// ProcessBytes loads a workbook and extracts its invoices. Only an unreadable
// workbook is an error.
func (p *Processor) ProcessBytes(data []byte, filename string) ([]models.Invoice, error) {
	sheets, err := p.parser.ProcessBytes(data, filename)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", filename, err)
	}
	return p.ProcessSheets(sheets), nil
}

// ProcessFile reads path and extracts its invoices.
func (p *Processor) ProcessFile(path string) ([]models.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return p.ProcessBytes(data, filepath.Base(path))
}

func (p *Processor) ProcessDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading directory: %w", err)
	}

	for _, entry := range entries {
		if err := p.processEntry(dir, entry); err != nil {
			p.logger.Error("failed to process entry", "file", entry.Name(), "error", err)
		}
	}

	return nil
}

func (p *Processor) processEntry(dir string, entry os.DirEntry) error {
	if entry.IsDir() {
		return nil
	}

	name := entry.Name()
	if !parser.Supported(name) || strings.HasSuffix(strings.ToLower(name), outputSuffix) {
		return nil
	}

	inputPath := filepath.Join(dir, name)
	outFile := p.OutputPath(inputPath)

	p.logger.Info("processing file", "path", inputPath)

	invoices, err := p.ProcessFile(inputPath)
	if err != nil {
		return err
	}
	if err := p.WriteFile(outFile, invoices); err != nil {
		return err
	}

	p.logger.Info("processed file successfully", "input", inputPath, "output", outFile, "invoices", len(invoices))
	return nil
}

// OutputPath returns where the converted workbook for inputPath is written.
func (p *Processor) OutputPath(inputPath string) string {
	fileName := filepath.Base(inputPath)
	baseName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if dir := p.config.OutputPath(); dir != "" {
		return filepath.Join(dir, baseName+outputSuffix)
	}
	return filepath.Join(filepath.Dir(inputPath), baseName+outputSuffix)
}

// OutputName is the file name used for converted results.
func OutputName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + outputSuffix
}

// WriteFile writes invoices as Header and Items sheets to path.
func (p *Processor) WriteFile(path string, invoices []models.Invoice) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer out.Close()

	if err := p.formatter.WriteXLSX(out, invoices); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	return nil
}
