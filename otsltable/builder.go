/* SPDX-License-Identifier: BSD-2-Clause */

package otsltable

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/tablekit/tableconv/tableir"
)

// BuildOptions controls how Build renders the intermediate representation
// back to an OTSL token stream.
type BuildOptions struct {
	// IncludeLocation emits a run of four <loc_N> bounding-box placeholder
	// tokens after the structure metadata.
	IncludeLocation bool
	// Rand supplies the pseudo-random source for location token values.
	// Tests should inject a seeded *rand.Rand for determinism; if nil, a
	// fresh source seeded with 1 is created on every call, so the location
	// tokens are the same each time.
	Rand *rand.Rand
}

// DefaultBuildOptions enables location tokens with the default source.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{IncludeLocation: true}
}

// Build renders a TableStructure as an OTSL token stream. It validates the
// structure first and refuses to render an invalid one.
func Build(table *tableir.TableStructure, opts BuildOptions) (string, error) {
	if err := table.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("<otsl>")

	if table.Caption != nil {
		b.WriteString("<caption>")
		b.WriteString(table.Caption.Text)
		b.WriteString("</caption>")
	}

	if table.HasExplicitThead {
		b.WriteString("<has_thead>")
	}
	if table.HasExplicitTbody {
		b.WriteString("<has_tbody>")
	}
	if table.HasExplicitTfoot {
		b.WriteString("<has_tfoot>")
		if len(table.TfootRows) > 0 {
			rows := append([]int(nil), table.TfootRows...)
			sort.Ints(rows)
			parts := make([]string, len(rows))
			for i, r := range rows {
				parts[i] = strconv.Itoa(r)
			}
			b.WriteString("<tfoot_rows>")
			b.WriteString(strings.Join(parts, ","))
			b.WriteString("</tfoot_rows>")
		}
	}

	if opts.IncludeLocation {
		b.WriteString(generateLocationTags(opts.Rand))
	}

	b.WriteString(buildTableContent(table))
	b.WriteString("</otsl>")

	return b.String(), nil
}

func generateLocationTags(r *rand.Rand) string {
	rng := r
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	x := 30 + rng.Intn(200-30+1)
	y := 80 + rng.Intn(300-80+1)
	w := 300 + rng.Intn(800-300+1)
	h := 200 + rng.Intn(600-200+1)
	return fmt.Sprintf("<loc_%d><loc_%d><loc_%d><loc_%d>", x, y, w, h)
}

func buildTableContent(table *tableir.TableStructure) string {
	grid := table.OccupancyGrid()

	var b strings.Builder
	for row := 0; row < table.NumRows; row++ {
		for col := 0; col < table.NumCols; col++ {
			idx := grid[row][col]
			if idx == -1 {
				b.WriteString("<" + tagEmptyCell + ">")
				continue
			}

			cell := table.Cells[idx]
			if cell.RowIdx == row && cell.ColIdx == col {
				tag, content := formatCell(cell, table)
				b.WriteString("<" + tag + ">")
				b.WriteString(content)
				continue
			}

			switch table.SpanTypeAt(row, col) {
			case tableir.SpanColspan:
				b.WriteString("<" + tagLeftCell + ">")
			case tableir.SpanRowspan:
				b.WriteString("<" + tagUpCell + ">")
			case tableir.SpanBoth:
				b.WriteString("<" + tagCrossCell + ">")
			}
		}
		b.WriteString("<" + tagNewline + ">")
	}
	return b.String()
}

func formatCell(cell tableir.Cell, table *tableir.TableStructure) (tag, content string) {
	isColHeaderRow := false
	for _, r := range table.ColumnHeaders {
		if r == cell.RowIdx {
			isColHeaderRow = true
			break
		}
	}
	isRowHeaderCol := false
	for _, c := range table.RowHeaders {
		if c == cell.ColIdx {
			isRowHeaderCol = true
			break
		}
	}

	switch {
	case cell.HeaderType == tableir.HeaderColumn || (cell.IsHeader && isColHeaderRow):
		tag = tagColHeader
	case cell.HeaderType == tableir.HeaderRow || (cell.IsHeader && isRowHeaderCol):
		tag = tagRowHeader
	case !cell.Content.IsEmpty():
		tag = tagFilledCell
	default:
		tag = tagEmptyCell
	}

	if tag == tagEmptyCell {
		return tag, ""
	}
	return tag, cell.Content.Text
}
