/* SPDX-License-Identifier: BSD-2-Clause */

package otsltable

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/tablekit/tableconv/latextag"
	"github.com/tablekit/tableconv/tableir"
)

// ErrMissingOpenTag is returned in strict mode when the input does not
// start with <otsl>.
var ErrMissingOpenTag = errors.New("otsl string must start with <otsl>")

// ErrMissingCloseTag is returned in strict mode when the input does not end
// with </otsl>.
var ErrMissingCloseTag = errors.New("otsl string must end with </otsl>")

// ErrNoRows is returned when the OTSL content has no rows at all.
var ErrNoRows = errors.New("otsl must have at least one row")

// Options controls how Parse builds the intermediate representation from an
// OTSL token stream.
type Options struct {
	// PreserveLatex enables LaTeX/math-tag detection in cell text.
	PreserveLatex bool
	// Strict disables auto-wrapping of a missing <otsl>/</otsl> pair (a
	// missing wrapper is reported as an error) and row padding/truncation
	// (ragged rows are kept as they are and are not reported, so the
	// resulting structure may fail Validate).
	Strict bool
}

// DefaultOptions mirrors htmltable.DefaultOptions: LaTeX detection on,
// lenient parsing.
func DefaultOptions() Options {
	return Options{PreserveLatex: true, Strict: false}
}

var (
	captionPattern  = regexp.MustCompile(`^<caption>(.*?)</caption>`)
	tfootRowsRegexp = regexp.MustCompile(`^<tfoot_rows>([\d,]+)</tfoot_rows>`)
	locRunPattern   = regexp.MustCompile(`^(?:<loc_\d+>)+`)
	rowTagPattern   = regexp.MustCompile(`<(ched|rhed|fcel|ecel|lcel|ucel|xcel)>`)
)

type rowTag struct {
	tag  string
	text string
}

// Parse reads an OTSL token stream and builds its intermediate
// representation.
func Parse(otslStr string, opts Options) (*tableir.TableStructure, error) {
	content := strings.TrimSpace(otslStr)

	if !strings.HasPrefix(content, "<otsl>") {
		if opts.Strict {
			return nil, ErrMissingOpenTag
		}
		content = "<otsl>" + content
	}
	if !strings.HasSuffix(content, "</otsl>") {
		if opts.Strict {
			return nil, ErrMissingCloseTag
		}
		content = content + "</otsl>"
	}
	content = strings.TrimSpace(content[len("<otsl>") : len(content)-len("</otsl>")])

	var caption *tableir.CellContent
	if m := captionPattern.FindStringSubmatchIndex(content); m != nil {
		text := content[m[2]:m[3]]
		cc := tableir.CellContent{Text: text}
		if opts.PreserveLatex {
			cc.Formulas = latextag.Tag(text)
		}
		caption = &cc
		content = strings.TrimSpace(content[m[1]:])
	}

	hasThead, hasTbody, hasTfoot := false, false, false
	var tfootRows []int

	if strings.HasPrefix(content, "<has_thead>") {
		hasThead = true
		content = strings.TrimSpace(content[len("<has_thead>"):])
	}
	if strings.HasPrefix(content, "<has_tbody>") {
		hasTbody = true
		content = strings.TrimSpace(content[len("<has_tbody>"):])
	}
	if strings.HasPrefix(content, "<has_tfoot>") {
		hasTfoot = true
		content = strings.TrimSpace(content[len("<has_tfoot>"):])
		if m := tfootRowsRegexp.FindStringSubmatchIndex(content); m != nil {
			for _, piece := range strings.Split(content[m[2]:m[3]], ",") {
				if n, err := strconv.Atoi(piece); err == nil {
					tfootRows = append(tfootRows, n)
				}
			}
			content = strings.TrimSpace(content[m[1]:])
		}
	}

	content = locRunPattern.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)

	var rowsRaw []string
	for _, r := range strings.Split(content, "<"+tagNewline+">") {
		r = strings.TrimSpace(r)
		if r != "" {
			rowsRaw = append(rowsRaw, r)
		}
	}
	if len(rowsRaw) == 0 {
		return nil, ErrNoRows
	}

	cells, numRows, numCols := parseRows(rowsRaw, opts)

	colHeaders, rowHeaders := identifyHeaders(cells, numRows, numCols)

	return &tableir.TableStructure{
		NumRows:          numRows,
		NumCols:          numCols,
		Cells:            cells,
		Caption:          caption,
		HasBorder:        true,
		ColumnHeaders:    colHeaders,
		RowHeaders:       rowHeaders,
		HasExplicitThead: hasThead,
		HasExplicitTbody: hasTbody,
		HasExplicitTfoot: hasTfoot,
		TfootRows:        tfootRows,
	}, nil
}

func parseRowTags(rowStr string) []rowTag {
	matches := rowTagPattern.FindAllStringSubmatchIndex(rowStr, -1)
	tags := make([]rowTag, 0, len(matches))
	for i, m := range matches {
		tag := rowStr[m[2]:m[3]]
		start := m[1]
		end := len(rowStr)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		tags = append(tags, rowTag{tag: tag, text: strings.TrimSpace(rowStr[start:end])})
	}
	return tags
}

func parseRows(rowsRaw []string, opts Options) ([]tableir.Cell, int, int) {
	allRowTags := make([][]rowTag, len(rowsRaw))
	maxCols := 0
	for i, row := range rowsRaw {
		allRowTags[i] = parseRowTags(row)
		if len(allRowTags[i]) > maxCols {
			maxCols = len(allRowTags[i])
		}
	}

	numRows := len(rowsRaw)
	numCols := maxCols

	if !opts.Strict {
		for i, tags := range allRowTags {
			switch {
			case len(tags) < maxCols:
				for len(tags) < maxCols {
					tags = append(tags, rowTag{tag: tagEmptyCell, text: ""})
				}
				allRowTags[i] = tags
			case len(tags) > maxCols:
				allRowTags[i] = tags[:maxCols]
			}
		}
	}

	occupancy := make([][]int, numRows)
	for r := range occupancy {
		occupancy[r] = make([]int, numCols)
		for c := range occupancy[r] {
			occupancy[r][c] = -1
		}
	}

	var cells []tableir.Cell
	cellIdx := 0

	for rowIdx, tags := range allRowTags {
		tagIdx := 0
		gridCol := 0

		for tagIdx < len(tags) {
			t := tags[tagIdx]

			if t.tag == tagLeftCell || t.tag == tagUpCell || t.tag == tagCrossCell {
				if gridCol < numCols && occupancy[rowIdx][gridCol] == -1 {
					occupancy[rowIdx][gridCol] = -2
				}
				gridCol++
				tagIdx++
				continue
			}

			for gridCol < numCols && occupancy[rowIdx][gridCol] != -1 {
				gridCol++
			}
			if gridCol >= numCols {
				break
			}

			isHeader := t.tag == tagColHeader || t.tag == tagRowHeader
			headerType := tableir.HeaderNone
			switch t.tag {
			case tagColHeader:
				headerType = tableir.HeaderColumn
			case tagRowHeader:
				headerType = tableir.HeaderRow
			}

			var content tableir.CellContent
			if t.tag != tagEmptyCell {
				content = tableir.CellContent{Text: t.text}
				if opts.PreserveLatex && t.text != "" {
					content.Formulas = latextag.Tag(t.text)
				}
			}

			rowspan, colspan := determineSpans(rowIdx, gridCol, tagIdx, allRowTags, numRows, numCols)

			cells = append(cells, tableir.Cell{
				RowIdx:     rowIdx,
				ColIdx:     gridCol,
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
			cEnd := gridCol + colspan
			if cEnd > numCols {
				cEnd = numCols
			}
			for r := rowIdx; r < rEnd; r++ {
				for c := gridCol; c < cEnd; c++ {
					occupancy[r][c] = cellIdx
				}
			}

			cellIdx++
			gridCol += colspan
			tagIdx += 1 + (colspan - 1)
		}
	}

	return cells, numRows, numCols
}

// determineSpans infers a cell's spans by lookahead on the token streams:
// colspan counts the lcel/xcel run following the origin in its own row,
// rowspan counts subsequent rows carrying ucel/xcel at the same token
// index. Each tag in a subsequent row is assumed to occupy exactly one
// grid column; that row's own colspans are not resolved first, which is
// why all rows must be padded to equal length before inference.
func determineSpans(rowIdx, gridCol, tagIdx int, allRowTags [][]rowTag, numRows, numCols int) (rowspan, colspan int) {
	currentRowTags := allRowTags[rowIdx]

	colspan = 1
	checkTagIdx := tagIdx + 1
	for checkTagIdx < len(currentRowTags) {
		tag := currentRowTags[checkTagIdx].tag
		if tag == tagLeftCell || tag == tagCrossCell {
			colspan++
			checkTagIdx++
		} else {
			break
		}
	}

	rowspan = 1
	checkRow := rowIdx + 1
	for checkRow < numRows {
		checkRowTags := allRowTags[checkRow]

		currentGridCol := 0
		foundTagIdx := -1
		for idx := range checkRowTags {
			if currentGridCol == gridCol {
				foundTagIdx = idx
				break
			}
			currentGridCol++
		}

		if foundTagIdx >= 0 && foundTagIdx < len(checkRowTags) {
			tag := checkRowTags[foundTagIdx].tag
			if tag == tagUpCell || tag == tagCrossCell {
				rowspan++
				checkRow++
			} else {
				break
			}
		} else {
			break
		}
	}

	return rowspan, colspan
}

func identifyHeaders(cells []tableir.Cell, numRows, numCols int) ([]int, []int) {
	var colHeaders, rowHeaders []int

	for r := 0; r < numRows; r++ {
		for _, c := range cells {
			if c.RowIdx == r && c.HeaderType == tableir.HeaderColumn {
				colHeaders = append(colHeaders, r)
				break
			}
		}
	}
	for c := 0; c < numCols; c++ {
		for _, cell := range cells {
			if cell.ColIdx == c && cell.HeaderType == tableir.HeaderRow {
				rowHeaders = append(rowHeaders, c)
				break
			}
		}
	}

	return colHeaders, rowHeaders
}
