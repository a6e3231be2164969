/* SPDX-License-Identifier: BSD-2-Clause */

// Package htmltable converts between HTML <table> markup and the shared
// tableir.TableStructure intermediate representation.
package htmltable

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tablekit/tableconv/latextag"
	"github.com/tablekit/tableconv/tableir"
)

// ErrNoTable is returned when no <table> element is found in the input.
var ErrNoTable = errors.New("no table element found in html")

// ErrEmptyTable is returned in strict mode when the table has no rows.
var ErrEmptyTable = errors.New("table has no rows")

// ErrSpanOutOfBounds is returned in strict mode when a rowspan/colspan
// attribute extends a cell past the table bounds. Lenient mode clamps the
// span instead.
var ErrSpanOutOfBounds = errors.New("cell span extends beyond table bounds")

// ErrMalformedTable is returned in strict mode when cell iteration leaves
// uncovered grid positions that lenient mode would have gap-filled.
var ErrMalformedTable = errors.New("malformed table: uncovered grid positions remain")

// Options controls how Parse builds the intermediate representation.
type Options struct {
	// PreserveLatex enables LaTeX/math-tag detection in cell text.
	PreserveLatex bool
	// NormalizeWhitespace collapses runs of whitespace in plain-text cells.
	NormalizeWhitespace bool
	// Strict disables the lenient recovery behaviors (empty-row removal,
	// span clamping beyond best-effort, gap filling). In strict mode
	// malformed tables are reported as errors instead of repaired.
	Strict bool
}

// DefaultOptions returns the options used when none are supplied: LaTeX
// detection and whitespace normalization on, lenient parsing.
func DefaultOptions() Options {
	return Options{PreserveLatex: true, NormalizeWhitespace: true, Strict: false}
}

var inlineTags = map[atom.Atom]bool{
	atom.Sup: true, atom.Sub: true, atom.B: true, atom.I: true,
	atom.Strong: true, atom.Em: true, atom.U: true, atom.Span: true, atom.A: true,
}

var mathLikeNeedles = []string{"<math", "<formula", "<equation", "<sup", "<sub"}

type rowSection int

const (
	sectionTbody rowSection = iota
	sectionThead
	sectionTfoot
)

// Parse reads HTML, locates the first <table> element, and builds its
// intermediate representation. Parsing first tries html.ParseFragment
// (which behaves like a browser's innerHTML parse and tolerates a bare
// <table> without surrounding <html>/<body>); if that yields no table it
// falls back to a full-document html.Parse, which auto-closes unbalanced
// tags.
func Parse(htmlStr string, opts Options) (*tableir.TableStructure, error) {
	doc, err := parseDocument(htmlStr)
	if err != nil {
		return nil, err
	}

	tableNode := findTable(doc)
	if tableNode == nil {
		return nil, ErrNoTable
	}

	return build(tableNode, opts)
}

func parseDocument(htmlStr string) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(htmlStr), context)
	if err == nil {
		wrapper := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		for _, top := range nodes {
			wrapper.AppendChild(top)
		}
		if findTable(wrapper) != nil {
			return wrapper, nil
		}
	}
	return html.Parse(strings.NewReader(htmlStr))
}

func findTable(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c); t != nil {
			return t
		}
	}
	return nil
}

func build(table *html.Node, opts Options) (*tableir.TableStructure, error) {
	caption := extractCaption(table, opts)
	hasBorder := hasBorderAttr(table)
	hasThead, hasTbody, hasTfoot := detectSections(table)

	rows, sections := extractRows(table)
	if len(rows) == 0 {
		if opts.Strict {
			return nil, ErrEmptyTable
		}
		return &tableir.TableStructure{
			NumRows: 1,
			NumCols: 1,
			Cells:   []tableir.Cell{{RowIdx: 0, ColIdx: 0, Rowspan: 1, Colspan: 1}},
			Caption: caption,
		}, nil
	}

	numCols := determineNumCols(rows)
	numRowsBefore := len(rows)

	cells, err := buildCells(rows, sections, numRowsBefore, numCols, opts)
	if err != nil {
		return nil, err
	}

	var emptyRows map[int]bool
	if !opts.Strict {
		emptyRows = findEmptyRows(rows)
	}

	numRows := numRowsBefore
	if len(emptyRows) > 0 {
		cells, numRows = removeEmptyRows(cells, emptyRows, numRowsBefore)
		sections = removeEmptySections(sections, emptyRows)
	}

	if !opts.Strict {
		cells = fillGaps(cells, numRows, numCols)
	} else if hasGaps(cells, numRows, numCols) {
		return nil, ErrMalformedTable
	}

	colHeaders, rowHeaders := identifyHeaders(cells, sections, numRows, numCols)

	tfootRows := []int{}
	for i, s := range sections {
		if s == sectionTfoot {
			tfootRows = append(tfootRows, i)
		}
	}

	return &tableir.TableStructure{
		NumRows:          numRows,
		NumCols:          numCols,
		Cells:            cells,
		Caption:          caption,
		HasBorder:        hasBorder,
		ColumnHeaders:    colHeaders,
		RowHeaders:       rowHeaders,
		HasExplicitThead: hasThead,
		HasExplicitTbody: hasTbody,
		HasExplicitTfoot: hasTfoot,
		TfootRows:        tfootRows,
	}, nil
}

func extractCaption(table *html.Node, opts Options) *tableir.CellContent {
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Caption {
			text := elementText(c, opts)
			if strings.TrimSpace(text) == "" {
				return nil
			}
			content := extractCellContent(c, text, opts)
			return &content
		}
	}
	return nil
}

func hasBorderAttr(table *html.Node) bool {
	for _, a := range table.Attr {
		if a.Key == "border" {
			return a.Val != "0"
		}
	}
	return false
}

func detectSections(table *html.Node) (thead, tbody, tfoot bool) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Thead:
				thead = true
			case atom.Tbody:
				tbody = true
			case atom.Tfoot:
				tfoot = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return
}

func directChildren(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

func extractRows(table *html.Node) ([]*html.Node, []rowSection) {
	var rows []*html.Node
	var sections []rowSection

	for _, thead := range directChildren(table, atom.Thead) {
		for _, tr := range directChildren(thead, atom.Tr) {
			rows = append(rows, tr)
			sections = append(sections, sectionThead)
		}
	}

	tbodies := directChildren(table, atom.Tbody)
	if len(tbodies) > 0 {
		for _, tbody := range tbodies {
			for _, tr := range directChildren(tbody, atom.Tr) {
				rows = append(rows, tr)
				sections = append(sections, sectionTbody)
			}
		}
	} else {
		for _, tr := range directChildren(table, atom.Tr) {
			rows = append(rows, tr)
			sections = append(sections, sectionTbody)
		}
	}

	for _, tfoot := range directChildren(table, atom.Tfoot) {
		for _, tr := range directChildren(tfoot, atom.Tr) {
			rows = append(rows, tr)
			sections = append(sections, sectionTfoot)
		}
	}

	return rows, sections
}

func rowCells(row *html.Node) []*html.Node {
	var out []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			out = append(out, c)
		}
	}
	return out
}

func sanitizeSpan(raw string) int {
	if raw == "" {
		return 1
	}
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, `\`, "")
	s = strings.Trim(s, `"'`)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func determineNumCols(rows []*html.Node) int {
	maxCols := 0
	for _, row := range rows {
		cols := 0
		for _, cell := range rowCells(row) {
			cols += sanitizeSpan(attrValue(cell, "colspan"))
		}
		if cols > maxCols {
			maxCols = cols
		}
	}
	return maxCols
}

func buildCells(rows []*html.Node, sections []rowSection, numRows, numCols int, opts Options) ([]tableir.Cell, error) {
	occupancy := make([][]int, numRows)
	for r := range occupancy {
		occupancy[r] = make([]int, numCols)
		for c := range occupancy[r] {
			occupancy[r][c] = -1
		}
	}

	var cells []tableir.Cell
	cellIdx := 0

	for rowIdx, row := range rows {
		section := sections[rowIdx]
		colIdx := 0

		for _, cellNode := range rowCells(row) {
			for colIdx < numCols && occupancy[rowIdx][colIdx] != -1 {
				colIdx++
			}
			if colIdx >= numCols {
				continue
			}

			rowspan := sanitizeSpan(attrValue(cellNode, "rowspan"))
			colspan := sanitizeSpan(attrValue(cellNode, "colspan"))

			maxRowspan := numRows - rowIdx
			maxColspan := numCols - colIdx
			if rowspan > maxRowspan || colspan > maxColspan {
				if opts.Strict {
					return nil, fmt.Errorf("%w: cell at (%d, %d) spans %dx%d", ErrSpanOutOfBounds, rowIdx, colIdx, rowspan, colspan)
				}
				if rowspan > maxRowspan {
					rowspan = maxRowspan
				}
				if colspan > maxColspan {
					colspan = maxColspan
				}
			}

			isHeader := cellNode.DataAtom == atom.Th || section == sectionThead
			headerType := tableir.HeaderNone
			if section == sectionThead {
				headerType = tableir.HeaderColumn
			} else if colIdx == 0 && isHeader {
				headerType = tableir.HeaderRow
			}

			text := elementText(cellNode, opts)
			content := extractCellContent(cellNode, text, opts)

			cells = append(cells, tableir.Cell{
				RowIdx:     rowIdx,
				ColIdx:     colIdx,
				Rowspan:    rowspan,
				Colspan:    colspan,
				Content:    content,
				IsHeader:   isHeader,
				HeaderType: headerType,
			})

			rEnd := rowIdx + rowspan
			if rEnd > numRows {
				rEnd = numRows
			}
			cEnd := colIdx + colspan
			if cEnd > numCols {
				cEnd = numCols
			}
			for r := rowIdx; r < rEnd; r++ {
				for c := colIdx; c < cEnd; c++ {
					occupancy[r][c] = cellIdx
				}
			}

			cellIdx++
			colIdx += colspan
		}
	}

	return cells, nil
}

func hasGaps(cells []tableir.Cell, numRows, numCols int) bool {
	tbl := &tableir.TableStructure{NumRows: numRows, NumCols: numCols, Cells: cells}
	grid := tbl.OccupancyGrid()
	for r := 0; r < numRows; r++ {
		for c := 0; c < numCols; c++ {
			if grid[r][c] == -1 {
				return true
			}
		}
	}
	return false
}

func findEmptyRows(rows []*html.Node) map[int]bool {
	empty := make(map[int]bool)
	for idx, row := range rows {
		if len(rowCells(row)) == 0 {
			empty[idx] = true
		}
	}
	return empty
}

func removeEmptyRows(cells []tableir.Cell, emptyRows map[int]bool, numRowsBefore int) ([]tableir.Cell, int) {
	rowMapping := make(map[int]int)
	newIdx := 0
	for old := 0; old < numRowsBefore; old++ {
		if !emptyRows[old] {
			rowMapping[old] = newIdx
			newIdx++
		}
	}

	var filtered []tableir.Cell
	for _, cell := range cells {
		if emptyRows[cell.RowIdx] {
			continue
		}
		newRow, ok := rowMapping[cell.RowIdx]
		if !ok {
			continue
		}
		newRowspan := 1
		for r := cell.RowIdx + 1; r < cell.RowIdx+cell.Rowspan; r++ {
			if !emptyRows[r] {
				newRowspan++
			}
		}
		cell.RowIdx = newRow
		cell.Rowspan = newRowspan
		filtered = append(filtered, cell)
	}
	return filtered, newIdx
}

func removeEmptySections(sections []rowSection, emptyRows map[int]bool) []rowSection {
	var out []rowSection
	for i, s := range sections {
		if !emptyRows[i] {
			out = append(out, s)
		}
	}
	return out
}

func fillGaps(cells []tableir.Cell, numRows, numCols int) []tableir.Cell {
	tbl := &tableir.TableStructure{NumRows: numRows, NumCols: numCols, Cells: cells}
	grid := tbl.OccupancyGrid()
	for r := 0; r < numRows; r++ {
		for c := 0; c < numCols; c++ {
			if grid[r][c] == -1 {
				cells = append(cells, tableir.Cell{RowIdx: r, ColIdx: c, Rowspan: 1, Colspan: 1})
				grid[r][c] = len(cells) - 1
			}
		}
	}
	return cells
}

func identifyHeaders(cells []tableir.Cell, sections []rowSection, numRows, numCols int) ([]int, []int) {
	var colHeaders []int
	for rowIdx, s := range sections {
		if s == sectionThead {
			colHeaders = append(colHeaders, rowIdx)
		}
	}

	if len(colHeaders) == 0 {
		var firstRow []tableir.Cell
		for _, c := range cells {
			if c.RowIdx == 0 {
				firstRow = append(firstRow, c)
			}
		}
		allHeaders := len(firstRow) > 0
		for _, c := range firstRow {
			if !c.IsHeader {
				allHeaders = false
				break
			}
		}
		if allHeaders {
			colHeaders = append(colHeaders, 0)
		}
	}

	isColHeaderRow := make(map[int]bool)
	for _, r := range colHeaders {
		isColHeaderRow[r] = true
	}

	var firstCol []tableir.Cell
	for _, c := range cells {
		if c.ColIdx == 0 && !isColHeaderRow[c.RowIdx] {
			firstCol = append(firstCol, c)
		}
	}
	var rowHeaders []int
	if len(firstCol) > 0 {
		allHeaders := true
		for _, c := range firstCol {
			if !c.IsHeader {
				allHeaders = false
				break
			}
		}
		if allHeaders {
			rowHeaders = append(rowHeaders, 0)
		}
	}

	return colHeaders, rowHeaders
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func hasInlineMarkup(n *html.Node) bool {
	found := false
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if found {
			return
		}
		if c != n && c.Type == html.ElementNode && inlineTags[c.DataAtom] {
			found = true
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return found
}

func elementText(n *html.Node, opts Options) string {
	if hasInlineMarkup(n) {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.WriteString(renderHTML(c))
		}
		return strings.TrimSpace(b.String())
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	text := b.String()

	if opts.NormalizeWhitespace {
		text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	}
	return text
}

func renderHTML(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

func extractCellContent(n *html.Node, text string, opts Options) tableir.CellContent {
	content := tableir.CellContent{Text: text}
	if !opts.PreserveLatex {
		return content
	}

	rendered := strings.ToLower(renderHTML(n))
	for _, needle := range mathLikeNeedles {
		if strings.Contains(rendered, needle) {
			content.HasMathTags = true
			break
		}
	}
	content.Formulas = latextag.Tag(text)
	return content
}
