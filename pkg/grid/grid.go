// Package grid holds the immutable cell grid every extractor reads from.
package grid

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Cell is a single position of a sheet with its normalized text.
type Cell struct {
	Row  int
	Col  int
	Text string
}

// Grid is a rectangular, row-major array of normalized text cells.
// It is never mutated after construction.
type Grid struct {
	rows [][]string
	cols int
}

// Sheet pairs a grid with the worksheet name it was loaded from.
type Sheet struct {
	Name string
	Grid *Grid
}

var spaceCleaner = strings.NewReplacer(
	"\u00A0", " ",
	"\u202F", " ",
	"\u2007", " ",
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
	"\t", " ",
)

// New builds a grid from raw rows. Ragged rows are padded with empty cells,
// values are NFC-folded and trimmed, and "nan"/"null" markers become "".
func New(rows [][]string) *Grid {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, cols)
		for j, v := range row {
			out[i][j] = cleanCell(v)
		}
	}

	return &Grid{rows: out, cols: cols}
}

func cleanCell(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(spaceCleaner.Replace(s))
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "null", "none", "<nil>":
		return ""
	}
	return s
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return len(g.rows)
}

// Cols returns the number of columns.
func (g *Grid) Cols() int {
	return g.cols
}

// At returns the text at (r, c), or "" when the position is outside the grid.
func (g *Grid) At(r, c int) string {
	if r < 0 || r >= len(g.rows) || c < 0 || c >= g.cols {
		return ""
	}
	return g.rows[r][c]
}

// Lower returns the lowercased text at (r, c).
func (g *Grid) Lower(r, c int) string {
	return strings.ToLower(g.At(r, c))
}

// IsEmpty reports whether the cell at (r, c) has no text.
func (g *Grid) IsEmpty(r, c int) bool {
	return g.At(r, c) == ""
}

// Row returns a copy of row r.
func (g *Grid) Row(r int) []string {
	if r < 0 || r >= len(g.rows) {
		return nil
	}
	out := make([]string, g.cols)
	copy(out, g.rows[r])
	return out
}

// RowEmpty reports whether every cell of row r is empty.
func (g *Grid) RowEmpty(r int) bool {
	if r < 0 || r >= len(g.rows) {
		return true
	}
	for _, v := range g.rows[r] {
		if v != "" {
			return false
		}
	}
	return true
}

// Each visits the non-empty cells in row-major order until fn returns false.
func (g *Grid) Each(fn func(Cell) bool) {
	for r, row := range g.rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			if !fn(Cell{Row: r, Col: c, Text: v}) {
				return
			}
		}
	}
}

// Map returns a new grid with fn applied to every non-empty cell.
func (g *Grid) Map(fn func(string) string) *Grid {
	out := make([][]string, len(g.rows))
	for i, row := range g.rows {
		out[i] = make([]string, g.cols)
		for j, v := range row {
			if v == "" {
				continue
			}
			out[i][j] = strings.TrimSpace(fn(v))
		}
	}
	return &Grid{rows: out, cols: g.cols}
}
