/* SPDX-License-Identifier: BSD-2-Clause */

package htmltable

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/tablekit/tableconv/latextag"
	"github.com/tablekit/tableconv/tableir"
)

// inlineMarkupPattern recognizes the opening tag of any inline-markup element
// the parser preserves verbatim (see htmltable.inlineTags). Text containing
// one of these is treated as trusted HTML and emitted unescaped, matching the
// parser's verbatim-preservation contract; plain text is escaped, except when
// formulas are expanded (PreserveLatexAsText false and formulas present), in
// which case the whole text is emitted unescaped.
var inlineMarkupPattern = regexp.MustCompile(`(?i)<(sup|sub|b|i|strong|em|u|span|a)[ >]`)

func hasVerbatimMarkup(text string) bool {
	return inlineMarkupPattern.MatchString(text)
}

// BuildOptions controls how Build renders the intermediate representation
// back to HTML.
type BuildOptions struct {
	// IncludeBorders adds border="1" to the <table> tag when the IR's
	// HasBorder flag is set.
	IncludeBorders bool
	// NormalizeForTEDS forces a <thead> with at least one row to exist even
	// when the table carries no column headers, matching the layout TEDS
	// scoring expects.
	NormalizeForTEDS bool
	// ForceFirstRowThead places row 0 inside <thead> regardless of header
	// detection.
	ForceFirstRowThead bool
	// PreserveLatexAsText keeps detected formulas as plain text (e.g.
	// "$x^2$"). When false, formulas are expanded to <sup>/<sub> markup.
	PreserveLatexAsText bool
}

// DefaultBuildOptions mirrors DefaultOptions: borders on, LaTeX kept as text.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{IncludeBorders: true, PreserveLatexAsText: true}
}

// Build renders a TableStructure as an HTML <table>. It validates the
// structure first and refuses to render an invalid one.
func Build(table *tableir.TableStructure, opts BuildOptions) (string, error) {
	if err := table.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder

	if opts.IncludeBorders && table.HasBorder {
		b.WriteString(`<table border="1">`)
	} else {
		b.WriteString("<table>")
	}
	b.WriteString("\n")

	if table.Caption != nil {
		b.WriteString("  <caption>")
		b.WriteString(renderCellContent(*table.Caption, opts))
		b.WriteString("</caption>\n")
	}

	theadRows, tbodyRows, tfootRows := organizeRows(table, opts)

	if len(theadRows) > 0 || opts.NormalizeForTEDS {
		b.WriteString("  <thead>\n")
		rowsToInclude := theadRows
		if len(rowsToInclude) == 0 {
			rowsToInclude = []int{0}
		}
		for _, r := range rowsToInclude {
			buildRow(&b, table, r, opts)
		}
		b.WriteString("  </thead>\n")
	}

	tbodyStart := 0
	if len(theadRows) > 0 {
		tbodyStart = maxInt(theadRows) + 1
	} else if opts.NormalizeForTEDS {
		tbodyStart = 1
	}

	b.WriteString("  <tbody>\n")
	for _, r := range tbodyRows {
		if r >= tbodyStart {
			buildRow(&b, table, r, opts)
		}
	}
	b.WriteString("  </tbody>\n")

	if len(tfootRows) > 0 {
		b.WriteString("  <tfoot>\n")
		for _, r := range tfootRows {
			if r >= tbodyStart {
				buildRow(&b, table, r, opts)
			}
		}
		b.WriteString("  </tfoot>\n")
	}

	b.WriteString("</table>\n")
	return b.String(), nil
}

func maxInt(vals []int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func organizeRows(table *tableir.TableStructure, opts BuildOptions) (thead, tbody, tfoot []int) {
	theadSet := make(map[int]bool)
	for _, r := range table.ColumnHeaders {
		theadSet[r] = true
	}
	if opts.ForceFirstRowThead && table.NumRows > 0 {
		theadSet[0] = true
	}
	for r := range theadSet {
		thead = append(thead, r)
	}
	sort.Ints(thead)

	tfootSet := make(map[int]bool)
	for _, r := range table.TfootRows {
		if !theadSet[r] {
			tfootSet[r] = true
		}
	}

	for r := 0; r < table.NumRows; r++ {
		switch {
		case theadSet[r]:
		case tfootSet[r]:
			tfoot = append(tfoot, r)
		default:
			tbody = append(tbody, r)
		}
	}
	return thead, tbody, tfoot
}

func buildRow(b *strings.Builder, table *tableir.TableStructure, rowIdx int, opts BuildOptions) {
	b.WriteString("    <tr>")

	var rowCells []tableir.Cell
	for _, c := range table.Cells {
		if c.RowIdx == rowIdx {
			rowCells = append(rowCells, c)
		}
	}
	sort.Slice(rowCells, func(i, j int) bool { return rowCells[i].ColIdx < rowCells[j].ColIdx })

	added := make(map[int]bool)
	for _, cell := range rowCells {
		if added[cell.ColIdx] {
			continue
		}

		tag := "td"
		if cell.IsHeader {
			tag = "th"
		}

		var attrs strings.Builder
		if cell.Rowspan > 1 {
			fmt.Fprintf(&attrs, ` rowspan="%d"`, cell.Rowspan)
		}
		if cell.Colspan > 1 {
			fmt.Fprintf(&attrs, ` colspan="%d"`, cell.Colspan)
		}

		fmt.Fprintf(b, "<%s%s>%s</%s>", tag, attrs.String(), renderCellContent(cell.Content, opts), tag)

		for c := cell.ColIdx; c < cell.ColIdx+cell.Colspan; c++ {
			added[c] = true
		}
	}

	b.WriteString("</tr>\n")
}

func renderCellContent(content tableir.CellContent, opts BuildOptions) string {
	verbatim := hasVerbatimMarkup(content.Text)

	if opts.PreserveLatexAsText || len(content.Formulas) == 0 {
		if verbatim {
			return content.Text
		}
		return html.EscapeString(content.Text)
	}

	text := content.Text
	for _, f := range content.Formulas {
		rendered := latextag.ToHTML(f, false)
		text = strings.Replace(text, f.OriginalText, rendered, 1)
	}
	return text
}
