/* SPDX-License-Identifier: BSD-2-Clause */

package latextag

import (
	"testing"

	"github.com/tablekit/tableconv/tableir"
)

func TestTag_DisplayMathTakesPriorityOverInline(t *testing.T) {
	formulas := Tag("value $$x^2 + y^2$$ end")
	if len(formulas) != 1 {
		t.Fatalf("expected 1 formula, got %d: %+v", len(formulas), formulas)
	}
	if formulas[0].Kind != tableir.FormulaDisplay {
		t.Fatalf("expected FormulaDisplay, got %v", formulas[0].Kind)
	}
	if formulas[0].OriginalText != "$$x^2 + y^2$$" {
		t.Fatalf("unexpected text %q", formulas[0].OriginalText)
	}
}

func TestTag_InlineMath(t *testing.T) {
	formulas := Tag("the value is $x + 1$ today")
	if len(formulas) != 1 {
		t.Fatalf("expected 1 formula, got %d", len(formulas))
	}
	if formulas[0].Kind != tableir.FormulaInline {
		t.Fatalf("expected FormulaInline, got %v", formulas[0].Kind)
	}
}

func TestTag_CurrencyNotTaggedAsLatex(t *testing.T) {
	formulas := Tag("price is $10,000 today")
	if len(formulas) != 0 {
		t.Fatalf("expected no formulas for currency text, got %+v", formulas)
	}
}

func TestTag_PlainDollarAmountNotTagged(t *testing.T) {
	formulas := Tag("$5")
	if len(formulas) != 0 {
		t.Fatalf("expected no formula for bare amount, got %+v", formulas)
	}
}

func TestTag_MathTagDetected(t *testing.T) {
	formulas := Tag("see <math>a+b</math> below")
	if len(formulas) != 1 || formulas[0].Kind != tableir.FormulaTag {
		t.Fatalf("expected one FormulaTag, got %+v", formulas)
	}
}

func TestTag_SupSubDetected(t *testing.T) {
	formulas := Tag("x<sup>2</sup> and y<sub>i</sub>")
	if len(formulas) != 2 {
		t.Fatalf("expected 2 formulas, got %d: %+v", len(formulas), formulas)
	}
	if formulas[0].Kind != tableir.FormulaTagSup {
		t.Fatalf("expected first to be sup, got %v", formulas[0].Kind)
	}
	if formulas[1].Kind != tableir.FormulaTagSub {
		t.Fatalf("expected second to be sub, got %v", formulas[1].Kind)
	}
}

func TestTag_OverlappingDetectionsAreNotDuplicated(t *testing.T) {
	formulas := Tag("$$a^2$$ plus <sup>x</sup>")
	if len(formulas) != 2 {
		t.Fatalf("expected 2 non-overlapping formulas, got %d: %+v", len(formulas), formulas)
	}
}

func TestTag_ResultsSortedByPosition(t *testing.T) {
	formulas := Tag("a<sup>1</sup> b $x+y$ c")
	for i := 1; i < len(formulas); i++ {
		if formulas[i].StartPos < formulas[i-1].StartPos {
			t.Fatalf("formulas not sorted: %+v", formulas)
		}
	}
}

func TestTag_Idempotent(t *testing.T) {
	text := "x<sup>2</sup> with $a+b$ and $$c^2$$"
	first := Tag(text)
	second := Tag(text)
	if len(first) != len(second) {
		t.Fatalf("expected identical results, got %d vs %d formulas", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("formula %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestValidate_BalancedPasses(t *testing.T) {
	ok, err := Validate("$x^{2}_{i}$")
	if !ok || err != nil {
		t.Fatalf("expected valid, got ok=%v err=%v", ok, err)
	}
}

func TestValidate_UnbalancedBraceFails(t *testing.T) {
	ok, err := Validate("x^{2")
	if ok || err == nil {
		t.Fatal("expected unbalanced brace to fail")
	}
}

func TestValidate_UnbalancedDollarFails(t *testing.T) {
	ok, err := Validate("$x+1")
	if ok || err == nil {
		t.Fatal("expected unbalanced dollar to fail")
	}
}

func TestToLaTeX_ConvertsSupSubAndMathTags(t *testing.T) {
	got := ToLaTeX("x<sup>2</sup> and y<sub>i</sub> and <math>a+b</math>")
	want := "x^{2} and y_{i} and $a+b$"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestToHTML_PreserveAsTextReturnsOriginal(t *testing.T) {
	f := tableir.Formula{OriginalText: "$x^2$", Kind: tableir.FormulaInline}
	if got := ToHTML(f, true); got != f.OriginalText {
		t.Fatalf("got %q want %q", got, f.OriginalText)
	}
}

func TestToHTML_ExpandsSupNotation(t *testing.T) {
	f := tableir.Formula{OriginalText: "$x^{2}$", Kind: tableir.FormulaInline}
	got := ToHTML(f, false)
	want := "x<sup>2</sup>"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestToHTML_TagKindPassesThrough(t *testing.T) {
	f := tableir.Formula{OriginalText: "<math>a+b</math>", Kind: tableir.FormulaTag}
	if got := ToHTML(f, false); got != f.OriginalText {
		t.Fatalf("got %q want %q", got, f.OriginalText)
	}
}
