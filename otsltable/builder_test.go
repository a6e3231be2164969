/* SPDX-License-Identifier: BSD-2-Clause */

package otsltable

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/tablekit/tableconv/tableir"
)

func TestBuild_RoundTripsSimpleTable(t *testing.T) {
	tbl := mustParse(t, "<otsl><fcel>A<fcel>B<nl><fcel>C<fcel>D<nl></otsl>", DefaultOptions())

	out, err := Build(tbl, BuildOptions{Rand: rand.New(rand.NewSource(42))})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	reparsed, err := Parse(out, DefaultOptions())
	if err != nil {
		t.Fatalf("re-parse failed: %v\notsl was: %s", err, out)
	}
	if reparsed.NumRows != 2 || reparsed.NumCols != 2 {
		t.Fatalf("expected 2x2 after round-trip, got %dx%d", reparsed.NumRows, reparsed.NumCols)
	}
	if reparsed.CellAt(0, 0).Content.Text != "A" {
		t.Fatalf("expected A, got %q", reparsed.CellAt(0, 0).Content.Text)
	}
}

func TestBuild_EmitsLeftUpCrossForSpans(t *testing.T) {
	tbl := &tableir.TableStructure{
		NumRows: 2,
		NumCols: 2,
		Cells: []tableir.Cell{
			{RowIdx: 0, ColIdx: 0, Rowspan: 2, Colspan: 2, Content: tableir.CellContent{Text: "Big"}},
		},
	}
	out, err := Build(tbl, BuildOptions{IncludeLocation: false})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(out, "<fcel>Big") {
		t.Fatalf("expected origin cell tag, got %s", out)
	}
	if !strings.Contains(out, "<lcel>") || !strings.Contains(out, "<ucel>") || !strings.Contains(out, "<xcel>") {
		t.Fatalf("expected lcel/ucel/xcel continuation tags, got %s", out)
	}
}

func TestBuild_NoLocationTagsWhenDisabled(t *testing.T) {
	tbl := &tableir.TableStructure{
		NumRows: 1,
		NumCols: 1,
		Cells: []tableir.Cell{
			{RowIdx: 0, ColIdx: 0, Rowspan: 1, Colspan: 1, Content: tableir.CellContent{Text: "A"}},
		},
	}
	out, err := Build(tbl, BuildOptions{IncludeLocation: false})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if strings.Contains(out, "<loc_") {
		t.Fatalf("did not expect location tags, got %s", out)
	}
}

func TestBuild_LocationTagsDeterministicWithSeededRand(t *testing.T) {
	tbl := &tableir.TableStructure{
		NumRows: 1,
		NumCols: 1,
		Cells: []tableir.Cell{
			{RowIdx: 0, ColIdx: 0, Rowspan: 1, Colspan: 1, Content: tableir.CellContent{Text: "A"}},
		},
	}
	out1, err := Build(tbl, BuildOptions{IncludeLocation: true, Rand: rand.New(rand.NewSource(7))})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	out2, err := Build(tbl, BuildOptions{IncludeLocation: true, Rand: rand.New(rand.NewSource(7))})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if out1 != out2 {
		t.Fatalf("expected identical output with same seed, got %q vs %q", out1, out2)
	}
}

func TestBuild_EmptyCellTagForBlankContent(t *testing.T) {
	tbl := &tableir.TableStructure{
		NumRows: 1,
		NumCols: 1,
		Cells: []tableir.Cell{
			{RowIdx: 0, ColIdx: 0, Rowspan: 1, Colspan: 1, Content: tableir.CellContent{Text: ""}},
		},
	}
	out, err := Build(tbl, BuildOptions{IncludeLocation: false})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(out, "<ecel>") {
		t.Fatalf("expected ecel tag for blank cell, got %s", out)
	}
}

func TestBuild_InvalidStructureRejected(t *testing.T) {
	tbl := &tableir.TableStructure{NumRows: 2, NumCols: 2}
	if _, err := Build(tbl, DefaultBuildOptions()); err == nil {
		t.Fatal("expected Build to reject invalid structure")
	}
}

func TestBuild_TfootRowsEmittedSorted(t *testing.T) {
	tbl := &tableir.TableStructure{
		NumRows: 2,
		NumCols: 1,
		Cells: []tableir.Cell{
			{RowIdx: 0, ColIdx: 0, Rowspan: 1, Colspan: 1, Content: tableir.CellContent{Text: "A"}},
			{RowIdx: 1, ColIdx: 0, Rowspan: 1, Colspan: 1, Content: tableir.CellContent{Text: "B"}},
		},
		HasExplicitTfoot: true,
		TfootRows:        []int{1, 0},
	}
	out, err := Build(tbl, BuildOptions{IncludeLocation: false})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(out, "<tfoot_rows>0,1</tfoot_rows>") {
		t.Fatalf("expected sorted tfoot_rows, got %s", out)
	}
}
