package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/yurifrl/invex/pkg/grid"
)

// ParseCSV reads a single-sheet workbook exported as CSV.
func (p *Parser) ParseCSV(data []byte, name string) ([]grid.Sheet, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if bytes.Count(data, []byte(";")) > bytes.Count(data, []byte(",")) {
		reader.Comma = ';'
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: error reading csv: %v", ErrInvalidWorkbook, err)
	}
	return []grid.Sheet{{Name: name, Grid: grid.New(rows)}}, nil
}
