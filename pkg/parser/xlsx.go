package parser

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yurifrl/invex/pkg/grid"
)

// dateLayout keeps the four-digit year the date locators look for.
const dateLayout = "1/2/2006"

func (p *Parser) ParseXLSX(data []byte) ([]grid.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: error opening xlsx: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no sheets found", ErrInvalidWorkbook)
	}

	dates := newDateCells(f)
	sheets := make([]grid.Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			// no grid: the aggregator reports and skips the sheet in order
			p.logger.Warn("error reading sheet", "sheet", name, "error", err)
			sheets = append(sheets, grid.Sheet{Name: name})
			continue
		}
		if err := dates.render(name, rows); err != nil {
			p.logger.Debug("error reading raw cell values", "sheet", name, "error", err)
		}
		sheets = append(sheets, grid.Sheet{Name: name, Grid: grid.New(rows)})
	}
	return sheets, nil
}

// dateCells rewrites date-formatted numeric cells. GetRows renders them with
// their number format, and the built-in short date is "mm-dd-yy".
type dateCells struct {
	file     *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	d := &dateCells{file: f, styles: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

func (d *dateCells) render(sheet string, rows [][]string) error {
	raw, err := d.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	for r, row := range rows {
		if r >= len(raw) {
			break
		}
		for c, text := range row {
			if c >= len(raw[r]) || raw[r][c] == text {
				continue
			}
			serial, err := strconv.ParseFloat(raw[r][c], 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil || !d.isDate(sheet, cell) {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, d.date1904)
			if err != nil {
				continue
			}
			layout := dateLayout
			if t.Hour() != 0 || t.Minute() != 0 {
				layout += " 15:04"
			}
			row[c] = t.Format(layout)
		}
	}
	return nil
}

func (d *dateCells) isDate(sheet, cell string) bool {
	idx, err := d.file.GetCellStyle(sheet, cell)
	if err != nil {
		return false
	}
	if ok, seen := d.styles[idx]; seen {
		return ok
	}
	ok := false
	if style, err := d.file.GetStyle(idx); err == nil {
		ok = isDateFormat(style)
	}
	d.styles[idx] = ok
	return ok
}

// isDateFormat reports whether the style shows a calendar date. Time-only
// formats are left alone.
func isDateFormat(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return customDateFormat(*style.CustomNumFmt)
	}
	switch style.NumFmt {
	case 14, 15, 16, 17, 22:
		return true
	}
	return false
}

func customDateFormat(code string) bool {
	var b strings.Builder
	quoted, bracket := false, false
	runes := []rune(strings.ToLower(code))
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			quoted = !quoted
		case quoted:
		case ch == '[':
			bracket = true
		case ch == ']':
			bracket = false
		case bracket:
		case ch == '\\':
			i++
		default:
			b.WriteRune(ch)
		}
	}
	plain := b.String()
	return strings.ContainsAny(plain, "dy")
}
