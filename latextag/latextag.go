/* SPDX-License-Identifier: BSD-2-Clause */

// Package latextag detects LaTeX formulas and math-like inline markup
// (sup/sub) in cell text, producing an ordered, non-overlapping sequence of
// tableir.Formula. It is a pure, stateless pass: the same input always
// yields the same output, and tagging an already-tagged text's rendered
// text back through Tag yields the same formulas (idempotence).
package latextag

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tablekit/tableconv/tableir"
)

var (
	displayPattern    = regexp.MustCompile(`\$\$([^$]+)\$\$`)
	inlinePattern     = regexp.MustCompile(`\$([^$]+)\$`)
	commandPattern    = regexp.MustCompile(`\\[a-zA-Z]+(?:\{[^}]*\}|\[[^\]]*\])*`)
	mathTagPattern    = regexp.MustCompile(`(?i)<(math|formula|equation)>(.*?)</(?:math|formula|equation)>`)
	supSubPattern     = regexp.MustCompile(`(?i)<(sup|sub)>(.*?)</(?:sup|sub)>`)
	currencyOnlyRegex = regexp.MustCompile(`^[\d,.\s]+$`)
)

// symbolChars are the LaTeX-ish symbols checked by looksLikeLatex, in the
// same order as the original: parentheses are deliberately excluded from
// the symbol check (a bare "(2)" should not trigger on its own).
const symbolChars = "^_{}\\=+-*/"

// Tag extracts all formulas from text in detection-order priority: display
// math first, then inline math, then HTML math containers, then sup/sub.
// Later detections that would overlap an earlier one are discarded.
func Tag(text string) []tableir.Formula {
	var formulas []tableir.Formula

	for _, m := range displayPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		inner := text[m[2]:m[3]]
		if !looksLikeLatex(inner) {
			continue
		}
		formulas = append(formulas, tableir.Formula{
			OriginalText: text[start:end],
			StartPos:     start,
			EndPos:       end,
			Kind:         tableir.FormulaDisplay,
		})
	}

	for _, m := range inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if overlaps(formulas, start, end) {
			continue
		}
		inner := text[m[2]:m[3]]
		if !looksLikeLatex(inner) {
			continue
		}
		formulas = append(formulas, tableir.Formula{
			OriginalText: text[start:end],
			StartPos:     start,
			EndPos:       end,
			Kind:         tableir.FormulaInline,
		})
	}

	for _, m := range mathTagPattern.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		if overlaps(formulas, start, end) {
			continue
		}
		formulas = append(formulas, tableir.Formula{
			OriginalText: text[start:end],
			StartPos:     start,
			EndPos:       end,
			Kind:         tableir.FormulaTag,
		})
	}

	for _, m := range supSubPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if overlaps(formulas, start, end) {
			continue
		}
		tag := strings.ToLower(text[m[2]:m[3]])
		kind := tableir.FormulaTagSup
		if tag == "sub" {
			kind = tableir.FormulaTagSub
		}
		formulas = append(formulas, tableir.Formula{
			OriginalText: text[start:end],
			StartPos:     start,
			EndPos:       end,
			Kind:         kind,
		})
	}

	sortFormulas(formulas)
	return formulas
}

func overlaps(formulas []tableir.Formula, start, end int) bool {
	for _, f := range formulas {
		if start < f.EndPos && f.StartPos < end {
			return true
		}
	}
	return false
}

func sortFormulas(formulas []tableir.Formula) {
	for i := 1; i < len(formulas); i++ {
		for j := i; j > 0 && formulas[j-1].StartPos > formulas[j].StartPos; j-- {
			formulas[j-1], formulas[j] = formulas[j], formulas[j-1]
		}
	}
}

// looksLikeLatex guards against false positives like "$10" or "$10,000":
// the inner text must contain a LaTeX command or one of the symbol
// characters, and must not be purely digits/commas/dots/whitespace.
func looksLikeLatex(text string) bool {
	if commandPattern.MatchString(text) {
		return true
	}
	hasSymbol := strings.ContainsAny(text, symbolChars)
	isCurrency := currencyOnlyRegex.MatchString(strings.TrimSpace(text))
	return hasSymbol && !isCurrency
}

// Validate checks a formula string for balanced braces and balanced `$`
// delimiters, returning a description of the first imbalance found.
func Validate(formula string) (bool, error) {
	depth := 0
	for _, r := range formula {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false, errors.New("unbalanced braces: too many closing braces")
			}
		}
	}
	if depth > 0 {
		return false, errors.New("unbalanced braces: too many opening braces")
	}
	if strings.Count(formula, "$")%2 != 0 {
		return false, errors.New("unbalanced dollar signs")
	}
	return true, nil
}

var (
	htmlSupPattern = regexp.MustCompile(`(?i)<sup>(.*?)</sup>`)
	htmlSubPattern = regexp.MustCompile(`(?i)<sub>(.*?)</sub>`)
	latexSupBrace  = regexp.MustCompile(`\^\{([^}]+)\}`)
	latexSupChar   = regexp.MustCompile(`\^(.)`)
	latexSubBrace  = regexp.MustCompile(`_\{([^}]+)\}`)
	latexSubChar   = regexp.MustCompile(`_(.)`)
)

// ToLaTeX converts HTML math markup (<sup>, <sub>, <math>/<formula>/<equation>)
// found in text into LaTeX notation. Text outside those tags is left as is.
func ToLaTeX(text string) string {
	result := htmlSupPattern.ReplaceAllString(text, `^{$1}`)
	result = htmlSubPattern.ReplaceAllString(result, `_{$1}`)
	result = mathTagPattern.ReplaceAllString(result, `$$$2$$`)
	return result
}

// ToHTML renders a detected Formula as HTML. When preserveAsText is true the
// formula's original text is kept verbatim (the common case: LaTeX left
// untouched for downstream renderers). Otherwise tag-kind formulas pass
// through unchanged and LaTeX-delimited formulas have their ^{...}/_{...}
// (and bare ^x/_x) notation expanded to <sup>/<sub>.
func ToHTML(f tableir.Formula, preserveAsText bool) string {
	if preserveAsText {
		return f.OriginalText
	}
	if f.Kind == tableir.FormulaTag || f.Kind == tableir.FormulaTagSup || f.Kind == tableir.FormulaTagSub {
		return f.OriginalText
	}

	text := f.OriginalText
	switch {
	case strings.HasPrefix(text, "$$"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "$$"), "$$")
	case strings.HasPrefix(text, "$"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "$"), "$")
	}

	text = latexSupBrace.ReplaceAllString(text, "<sup>$1</sup>")
	text = latexSupChar.ReplaceAllString(text, "<sup>$1</sup>")
	text = latexSubBrace.ReplaceAllString(text, "<sub>$1</sub>")
	text = latexSubChar.ReplaceAllString(text, "<sub>$1</sub>")
	return text
}
