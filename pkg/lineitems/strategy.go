// Package lineitems reconstructs the product table of an invoice sheet. Several
// table-recognition strategies are tried in priority order and the first one
// that yields at least one item wins.
package lineitems

import (
	"github.com/charmbracelet/log"
	"github.com/yurifrl/invex/pkg/grid"
	"github.com/yurifrl/invex/pkg/models"
)

// Strategy is one self-contained way of recognizing an item table.
type Strategy interface {
	Name() string
	TryExtract(g *grid.Grid, invoiceNumber string) ([]models.LineItem, bool)
}

type Options struct {
	// SectionLookahead is how many rows below a section marker hold the header.
	SectionLookahead int
	// RowWindow caps how many data rows a free-floating table may have.
	RowWindow           int
	CapturePlaceholders bool
	FuzzyHeaders        bool
	Vocabularies        []Vocabulary
}

func DefaultOptions() Options {
	return Options{
		SectionLookahead:    5,
		RowWindow:           30,
		CapturePlaceholders: true,
		FuzzyHeaders:        true,
		Vocabularies:        DefaultVocabularies,
	}
}

// Result is the outcome of an extraction and the strategy that produced it.
type Result struct {
	Items    []models.LineItem
	Strategy string
}

type Extractor struct {
	strategies []Strategy
	logger     *log.Logger
}

// New builds the default chain: labeled section, free-floating header, fixed
// column, numeric row.
func New(opts Options, logger *log.Logger) *Extractor {
	if opts.SectionLookahead <= 0 {
		opts.SectionLookahead = 5
	}
	if opts.RowWindow <= 0 {
		opts.RowWindow = 30
	}
	if len(opts.Vocabularies) == 0 {
		opts.Vocabularies = DefaultVocabularies
	}

	classifier := NewClassifier(opts.Vocabularies, opts.FuzzyHeaders)
	rules := rowRules{classifier: classifier, capturePlaceholders: opts.CapturePlaceholders}
	reader := tableReader{classifier: classifier, rules: rules}

	return NewWithStrategies(logger,
		&LabeledSection{reader: reader, lookahead: opts.SectionLookahead},
		&FreeFloatingHeader{reader: reader, window: opts.RowWindow},
		&FixedColumn{rules: rules},
		&NumericRow{rules: rules},
	)
}

// NewWithStrategies builds an extractor over an explicit chain.
func NewWithStrategies(logger *log.Logger, strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies, logger: logger}
}

func (e *Extractor) Strategies() []Strategy {
	return e.strategies
}

// Extract returns the items of the first successful strategy, or an empty
// non-nil slice.
func (e *Extractor) Extract(g *grid.Grid, invoiceNumber string) []models.LineItem {
	return e.Run(invoiceNumber, g).Items
}

// Run tries the chain on each grid in turn; the first grid with items wins.
func (e *Extractor) Run(invoiceNumber string, grids ...*grid.Grid) Result {
	for _, g := range grids {
		if g == nil {
			continue
		}
		for _, s := range e.strategies {
			items, ok := s.TryExtract(g, invoiceNumber)
			if !ok || len(items) == 0 {
				e.logger.Debug("strategy found no items", "strategy", s.Name())
				continue
			}
			e.logger.Debug("strategy matched", "strategy", s.Name(), "items", len(items))
			return Result{Items: items, Strategy: s.Name()}
		}
	}
	return Result{Items: []models.LineItem{}}
}
