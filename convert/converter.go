/* SPDX-License-Identifier: BSD-2-Clause */

// Package convert provides the high-level façade over htmltable and
// otsltable: bidirectional HTML <-> OTSL conversion through the shared
// tableir.TableStructure representation.
package convert

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/tablekit/tableconv/htmltable"
	"github.com/tablekit/tableconv/otsltable"
	"github.com/tablekit/tableconv/tableir"
)

// Options configures every operation a Converter performs. The zero value
// is not generally useful; use DefaultOptions.
type Options struct {
	PreserveLatex       bool
	Strict              bool
	NormalizeWhitespace bool
	IncludeLocation     bool
	IncludeBorders      bool
	NormalizeForTEDS    bool
	ForceFirstRowThead  bool
	PreserveLatexAsText bool
	Rand                *rand.Rand
}

// DefaultOptions returns lenient parsing, LaTeX detection and preservation,
// borders and location tokens on, and no TEDS normalization.
func DefaultOptions() Options {
	return Options{
		PreserveLatex:       true,
		Strict:              false,
		NormalizeWhitespace: true,
		IncludeLocation:     true,
		IncludeBorders:      true,
		NormalizeForTEDS:    false,
		PreserveLatexAsText: true,
	}
}

// Converter is the high-level entry point for table format conversion.
type Converter struct {
	Options Options
}

// New builds a Converter with the given options.
func New(opts Options) *Converter {
	return &Converter{Options: opts}
}

func (c *Converter) htmlOptions() htmltable.Options {
	return htmltable.Options{
		PreserveLatex:       c.Options.PreserveLatex,
		NormalizeWhitespace: c.Options.NormalizeWhitespace,
		Strict:              c.Options.Strict,
	}
}

func (c *Converter) htmlBuildOptions() htmltable.BuildOptions {
	return htmltable.BuildOptions{
		IncludeBorders:      c.Options.IncludeBorders,
		NormalizeForTEDS:    c.Options.NormalizeForTEDS,
		ForceFirstRowThead:  c.Options.ForceFirstRowThead,
		PreserveLatexAsText: c.Options.PreserveLatexAsText,
	}
}

func (c *Converter) otslOptions() otsltable.Options {
	return otsltable.Options{
		PreserveLatex: c.Options.PreserveLatex,
		Strict:        c.Options.Strict,
	}
}

func (c *Converter) otslBuildOptions() otsltable.BuildOptions {
	return otsltable.BuildOptions{
		IncludeLocation: c.Options.IncludeLocation,
		Rand:            c.Options.Rand,
	}
}

// HTMLToIR parses an HTML table into the intermediate representation.
func (c *Converter) HTMLToIR(html string) (*tableir.TableStructure, error) {
	return htmltable.Parse(html, c.htmlOptions())
}

// OTSLToIR parses an OTSL token stream into the intermediate representation.
func (c *Converter) OTSLToIR(otsl string) (*tableir.TableStructure, error) {
	return otsltable.Parse(otsl, c.otslOptions())
}

// IRToHTML renders the intermediate representation as HTML.
func (c *Converter) IRToHTML(table *tableir.TableStructure) (string, error) {
	return htmltable.Build(table, c.htmlBuildOptions())
}

// IRToOTSL renders the intermediate representation as an OTSL token stream.
func (c *Converter) IRToOTSL(table *tableir.TableStructure) (string, error) {
	return otsltable.Build(table, c.otslBuildOptions())
}

// HTMLToOTSL parses HTML and renders it as OTSL.
func (c *Converter) HTMLToOTSL(html string) (string, error) {
	ir, err := c.HTMLToIR(html)
	if err != nil {
		return "", err
	}
	return c.IRToOTSL(ir)
}

// OTSLToHTML parses OTSL and renders it as HTML.
func (c *Converter) OTSLToHTML(otsl string) (string, error) {
	ir, err := c.OTSLToIR(otsl)
	if err != nil {
		return "", err
	}
	return c.IRToHTML(ir)
}

// RoundtripResult is the outcome of converting through both formats and
// back, for inspecting how faithfully the round trip preserved structure.
type RoundtripResult struct {
	// Converted holds the intermediate-format output: OTSL for
	// RoundtripHTML, HTML for RoundtripOTSL.
	Converted string
	// Reconstructed holds the output converted back to the original format.
	Reconstructed string
	// Summary is a short human-readable description of the parsed IR, e.g.
	// "TableStructure(2x2, 4 cells)".
	Summary string
}

// RoundtripHTML converts html -> OTSL -> HTML and reports both outputs plus
// a summary of the intermediate representation.
func (c *Converter) RoundtripHTML(html string) (RoundtripResult, error) {
	ir, err := c.HTMLToIR(html)
	if err != nil {
		return RoundtripResult{}, err
	}
	otsl, err := c.IRToOTSL(ir)
	if err != nil {
		return RoundtripResult{}, err
	}
	rebuilt, err := c.OTSLToHTML(otsl)
	if err != nil {
		return RoundtripResult{}, err
	}
	return RoundtripResult{Converted: otsl, Reconstructed: rebuilt, Summary: ir.String()}, nil
}

// RoundtripOTSL converts otsl -> HTML -> OTSL and reports both outputs plus
// a summary of the intermediate representation.
func (c *Converter) RoundtripOTSL(otsl string) (RoundtripResult, error) {
	ir, err := c.OTSLToIR(otsl)
	if err != nil {
		return RoundtripResult{}, err
	}
	rendered, err := c.IRToHTML(ir)
	if err != nil {
		return RoundtripResult{}, err
	}
	rebuilt, err := c.HTMLToOTSL(rendered)
	if err != nil {
		return RoundtripResult{}, err
	}
	return RoundtripResult{Converted: rendered, Reconstructed: rebuilt, Summary: ir.String()}, nil
}

// ValidateConversion parses html and otsl independently and reports whether
// they describe the same table structure: matching dimensions, cell count,
// and per-cell position/span/trimmed-text.
func (c *Converter) ValidateConversion(html, otsl string) (bool, string, error) {
	htmlIR, err := c.HTMLToIR(html)
	if err != nil {
		return false, "", fmt.Errorf("parsing html: %w", err)
	}
	otslIR, err := c.OTSLToIR(otsl)
	if err != nil {
		return false, "", fmt.Errorf("parsing otsl: %w", err)
	}

	if htmlIR.NumRows != otslIR.NumRows {
		return false, fmt.Sprintf("row count mismatch: html=%d, otsl=%d", htmlIR.NumRows, otslIR.NumRows), nil
	}
	if htmlIR.NumCols != otslIR.NumCols {
		return false, fmt.Sprintf("column count mismatch: html=%d, otsl=%d", htmlIR.NumCols, otslIR.NumCols), nil
	}
	if len(htmlIR.Cells) != len(otslIR.Cells) {
		return false, fmt.Sprintf("cell count mismatch: html=%d, otsl=%d", len(htmlIR.Cells), len(otslIR.Cells)), nil
	}

	for i := range htmlIR.Cells {
		h, o := htmlIR.Cells[i], otslIR.Cells[i]
		if h.RowIdx != o.RowIdx || h.ColIdx != o.ColIdx {
			return false, fmt.Sprintf("cell position mismatch at index %d: html=(%d,%d), otsl=(%d,%d)",
				i, h.RowIdx, h.ColIdx, o.RowIdx, o.ColIdx), nil
		}
		if h.Rowspan != o.Rowspan || h.Colspan != o.Colspan {
			return false, fmt.Sprintf("cell span mismatch at (%d,%d)", h.RowIdx, h.ColIdx), nil
		}
		if strings.TrimSpace(h.Content.Text) != strings.TrimSpace(o.Content.Text) {
			return false, fmt.Sprintf("content mismatch at (%d,%d): %q != %q",
				h.RowIdx, h.ColIdx, strings.TrimSpace(h.Content.Text), strings.TrimSpace(o.Content.Text)), nil
		}
	}

	return true, "conversion is valid: structures match", nil
}

// Diff returns a human-readable structural diff between two TableStructure
// values, or "" if they are identical. It is primarily a test/debugging
// aid for comparing a parsed IR against an expected fixture.
func Diff(want, got *tableir.TableStructure) string {
	return cmp.Diff(want, got)
}
