/* SPDX-License-Identifier: BSD-2-Clause */

package convert

import (
	"math/rand"
	"testing"

	"pgregory.net/rapid"

	"github.com/tablekit/tableconv/tableir"
)

// Property: for any grid-shaped table built from plain, alphanumeric cell
// text and unit spans, HTML -> IR -> OTSL -> IR preserves dimensions and
// cell text (the lossy edges - LaTeX ambiguity, whitespace collapsing - are
// deliberately kept out of the generator).
func TestProperty_HTMLOTSLRoundTripPreservesGrid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(1, 6).Draw(t, "rows")
		cols := rapid.IntRange(1, 6).Draw(t, "cols")

		cellText := make([][]string, rows)
		for r := 0; r < rows; r++ {
			cellText[r] = make([]string, cols)
			for c := 0; c < cols; c++ {
				cellText[r][c] = rapid.StringMatching(`[a-zA-Z0-9]+`).Draw(t, "cell")
			}
		}

		htmlIn := buildGridHTML(cellText)

		opts := DefaultOptions()
		opts.Rand = rand.New(rand.NewSource(int64(rows*1000 + cols)))
		conv := New(opts)

		ir, err := conv.HTMLToIR(htmlIn)
		if err != nil {
			t.Fatalf("HTMLToIR failed: %v", err)
		}
		otsl, err := conv.IRToOTSL(ir)
		if err != nil {
			t.Fatalf("IRToOTSL failed: %v", err)
		}
		rebuiltIR, err := conv.OTSLToIR(otsl)
		if err != nil {
			t.Fatalf("OTSLToIR failed: %v\notsl: %s", err, otsl)
		}

		if rebuiltIR.NumRows != rows || rebuiltIR.NumCols != cols {
			t.Fatalf("dimensions not preserved: got %dx%d want %dx%d",
				rebuiltIR.NumRows, rebuiltIR.NumCols, rows, cols)
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				got := rebuiltIR.CellOriginAt(r, c)
				if got == nil {
					t.Fatalf("expected origin cell at (%d,%d)", r, c)
				}
				if got.Content.Text != cellText[r][c] {
					t.Fatalf("cell (%d,%d) text not preserved: got %q want %q", r, c, got.Content.Text, cellText[r][c])
				}
			}
		}
	})
}

// Property: a grid fully tiled with unit cells validates, and its occupancy
// grid leaves no gap.
func TestProperty_OccupancyGridFullyCoversValidTable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(1, 5).Draw(t, "rows")
		cols := rapid.IntRange(1, 5).Draw(t, "cols")

		var cells []tableir.Cell
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				cells = append(cells, tableir.Cell{RowIdx: r, ColIdx: c, Rowspan: 1, Colspan: 1})
			}
		}
		tbl := &tableir.TableStructure{NumRows: rows, NumCols: cols, Cells: cells}

		if err := tbl.Validate(); err != nil {
			t.Fatalf("expected a fully-tiled grid to validate, got %v", err)
		}

		grid := tbl.OccupancyGrid()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if grid[r][c] == -1 {
					t.Fatalf("gap at (%d,%d) in a fully-tiled grid", r, c)
				}
			}
		}
	})
}

func buildGridHTML(cellText [][]string) string {
	var b []byte
	b = append(b, "<table>"...)
	for _, row := range cellText {
		b = append(b, "<tr>"...)
		for _, cell := range row {
			b = append(b, "<td>"...)
			b = append(b, cell...)
			b = append(b, "</td>"...)
		}
		b = append(b, "</tr>"...)
	}
	b = append(b, "</table>"...)
	return string(b)
}
