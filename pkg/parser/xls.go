package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/yurifrl/invex/pkg/grid"
)

// ParseXLS reads a legacy BIFF workbook. Cell text is decoded as cp1252, which
// is what produces the mis-decoded Arabic the normalizer repairs.
func (p *Parser) ParseXLS(data []byte) (sheets []grid.Sheet, err error) {
	// extrame/xls panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			sheets = nil
			err = fmt.Errorf("%w: error reading xls: %v", ErrInvalidWorkbook, r)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("%w: error creating workbook: %v", ErrInvalidWorkbook, err)
	}

	n := workbook.NumSheets()
	if n == 0 {
		return nil, fmt.Errorf("%w: no sheets found", ErrInvalidWorkbook)
	}

	for i := 0; i < n; i++ {
		sheet := workbook.GetSheet(i)
		if sheet == nil {
			continue
		}

		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cols := make([]string, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cols[c] = row.Col(c)
			}
			rows = append(rows, cols)
		}
		sheets = append(sheets, grid.Sheet{Name: sheet.Name, Grid: grid.New(rows)})
	}

	return sheets, nil
}
