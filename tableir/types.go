/* SPDX-License-Identifier: BSD-2-Clause */

// Package tableir defines the intermediate representation shared by the
// HTML and OTSL table parsers and builders: a two-dimensional cell model
// with explicit row/column spans, header roles, and a caption.
package tableir

import (
	"fmt"
	"strings"
)

// HeaderType classifies the role a header cell plays in the table.
type HeaderType int

const (
	// HeaderNone marks a cell that is not a header.
	HeaderNone HeaderType = iota
	// HeaderColumn marks a cell heading a column (typically in thead).
	HeaderColumn
	// HeaderRow marks a cell heading a row (typically column 0).
	HeaderRow
)

// FormulaKind classifies how a Formula was detected.
type FormulaKind int

const (
	FormulaInline FormulaKind = iota
	FormulaDisplay
	FormulaTag
	FormulaTagSup
	FormulaTagSub
)

// Formula is a detected LaTeX (or LaTeX-like) span within a CellContent's
// text. Positions index into the containing text. Formulas never overlap.
type Formula struct {
	OriginalText string
	StartPos     int
	EndPos       int
	Kind         FormulaKind
}

// CellContent is an immutable bundle of a cell's rendered text plus any
// formulas detected within it.
type CellContent struct {
	Text        string
	Formulas    []Formula
	HasMathTags bool
}

// IsEmpty reports whether the content's text is empty once trimmed.
func (c CellContent) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Cell is a single table cell, anchored at its top-left (origin) position.
// It occupies the rectangle [RowIdx, RowIdx+Rowspan) x [ColIdx, ColIdx+Colspan).
type Cell struct {
	RowIdx     int
	ColIdx     int
	Rowspan    int
	Colspan    int
	Content    CellContent
	IsHeader   bool
	HeaderType HeaderType
}

// OccupiesPosition reports whether the cell's rectangle covers (row, col).
func (c Cell) OccupiesPosition(row, col int) bool {
	return row >= c.RowIdx && row < c.RowIdx+c.Rowspan &&
		col >= c.ColIdx && col < c.ColIdx+c.Colspan
}

// SpanType describes a grid position's relationship to the cell covering it.
type SpanType int

const (
	SpanEmpty SpanType = iota
	SpanOrigin
	SpanColspan
	SpanRowspan
	SpanBoth
)

// TableStructure is the intermediate representation of a table: a
// num_rows x num_cols grid of cells plus table-level metadata.
type TableStructure struct {
	NumRows          int
	NumCols          int
	Cells            []Cell
	Caption          *CellContent
	HasBorder        bool
	ColumnHeaders    []int
	RowHeaders       []int
	HasExplicitThead bool
	HasExplicitTbody bool
	HasExplicitTfoot bool
	TfootRows        []int
}

// CellAt returns the cell occupying (row, col), or nil if out of bounds or
// uncovered.
func (t *TableStructure) CellAt(row, col int) *Cell {
	if row < 0 || row >= t.NumRows || col < 0 || col >= t.NumCols {
		return nil
	}
	for i := range t.Cells {
		if t.Cells[i].OccupiesPosition(row, col) {
			return &t.Cells[i]
		}
	}
	return nil
}

// CellOriginAt returns the cell originating exactly at (row, col), or nil.
func (t *TableStructure) CellOriginAt(row, col int) *Cell {
	for i := range t.Cells {
		if t.Cells[i].RowIdx == row && t.Cells[i].ColIdx == col {
			return &t.Cells[i]
		}
	}
	return nil
}

// OccupancyGrid returns a NumRows x NumCols grid where each entry holds the
// index into Cells covering that position, or -1 if uncovered. It is
// recomputed from Cells on every call; callers must not cache it across
// mutation of the TableStructure.
func (t *TableStructure) OccupancyGrid() [][]int {
	grid := make([][]int, t.NumRows)
	for r := range grid {
		grid[r] = make([]int, t.NumCols)
		for c := range grid[r] {
			grid[r][c] = -1
		}
	}
	for idx, cell := range t.Cells {
		rEnd := cell.RowIdx + cell.Rowspan
		cEnd := cell.ColIdx + cell.Colspan
		if rEnd > t.NumRows {
			rEnd = t.NumRows
		}
		if cEnd > t.NumCols {
			cEnd = t.NumCols
		}
		for r := cell.RowIdx; r < rEnd; r++ {
			for c := cell.ColIdx; c < cEnd; c++ {
				if r >= 0 && c >= 0 {
					grid[r][c] = idx
				}
			}
		}
	}
	return grid
}

// SpanTypeAt determines how (row, col) relates to the cell that covers it.
func (t *TableStructure) SpanTypeAt(row, col int) SpanType {
	cell := t.CellAt(row, col)
	if cell == nil {
		return SpanEmpty
	}
	if cell.RowIdx == row && cell.ColIdx == col {
		return SpanOrigin
	}
	isColspan := col > cell.ColIdx
	isRowspan := row > cell.RowIdx
	switch {
	case isColspan && isRowspan:
		return SpanBoth
	case isColspan:
		return SpanColspan
	case isRowspan:
		return SpanRowspan
	default:
		return SpanOrigin
	}
}

// String renders a short summary, e.g. "TableStructure(2x2, 4 cells)".
func (t *TableStructure) String() string {
	return fmt.Sprintf("TableStructure(%dx%d, %d cells)", t.NumRows, t.NumCols, len(t.Cells))
}
