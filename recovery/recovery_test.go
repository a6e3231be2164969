/* SPDX-License-Identifier: BSD-2-Clause */

package recovery

import "testing"

func TestIsHTMLTruncated(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"complete table", "<table><tr><td>A</td></tr></table>", false},
		{"missing closing table", "<table><tr><td>A</td></tr>", true},
		{"unclosed tr", "<table><tr><td>A</td></tr><tr><td>B</td>", true},
		{"ends mid tag", "<table><tr><td>A</td></tr></table><td", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsHTMLTruncated(tc.html); got != tc.want {
				t.Errorf("IsHTMLTruncated(%q) = %v, want %v", tc.html, got, tc.want)
			}
		})
	}
}

func TestAutoCloseHTML(t *testing.T) {
	got := AutoCloseHTML("<table><tr><td>A</td></tr>")
	want := "<table><tr><td>A</td></tr></table>"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestAutoCloseHTML_NoChangeWhenComplete(t *testing.T) {
	html := "<table><tr><td>A</td></tr></table>"
	if got := AutoCloseHTML(html); got != html {
		t.Errorf("expected no change, got %q", got)
	}
}

func TestIsOTSLTruncated(t *testing.T) {
	tests := []struct {
		name string
		otsl string
		want bool
	}{
		{"complete", "<otsl><fcel>A<nl></otsl>", false},
		{"missing close", "<otsl><loc_1><loc_2><loc_3><loc_4><fcel>A<nl>", true},
		{"ends mid tag", "<otsl><fcel", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOTSLTruncated(tc.otsl); got != tc.want {
				t.Errorf("IsOTSLTruncated(%q) = %v, want %v", tc.otsl, got, tc.want)
			}
		})
	}
}

func TestAutoCloseOTSL(t *testing.T) {
	got := AutoCloseOTSL("<otsl><fcel>A<nl>")
	want := "<otsl><fcel>A<nl></otsl>"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestDetectTruncation_HTML(t *testing.T) {
	truncated, ctype, reason := DetectTruncation("<table><tr><td>A</td></tr>")
	if !truncated || ctype != ContentHTML {
		t.Fatalf("expected truncated html, got truncated=%v ctype=%v", truncated, ctype)
	}
	if reason != "missing closing </table> tag" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestDetectTruncation_OTSL(t *testing.T) {
	truncated, ctype, _ := DetectTruncation("<otsl><fcel>A<nl>")
	if !truncated || ctype != ContentOTSL {
		t.Fatalf("expected truncated otsl, got truncated=%v ctype=%v", truncated, ctype)
	}
}

func TestDetectTruncation_Unknown(t *testing.T) {
	truncated, ctype, _ := DetectTruncation("just some text")
	if truncated || ctype != ContentUnknown {
		t.Fatalf("expected unknown/non-truncated, got truncated=%v ctype=%v", truncated, ctype)
	}
}

func TestFixTruncated_FixesHTML(t *testing.T) {
	fixed, was, _ := FixTruncated("<table><tr><td>A</td></tr>", true)
	if !was {
		t.Fatal("expected truncation detected")
	}
	if fixed != "<table><tr><td>A</td></tr></table>" {
		t.Errorf("unexpected fixed content: %q", fixed)
	}
}

func TestFixTruncated_NoAutoFixLeavesContentUnchanged(t *testing.T) {
	content := "<table><tr><td>A</td></tr>"
	fixed, was, msg := FixTruncated(content, false)
	if !was || fixed != content {
		t.Fatalf("expected unchanged content with truncation flagged, got fixed=%q was=%v", fixed, was)
	}
	if msg == "" {
		t.Error("expected a non-empty message")
	}
}

func TestFixTruncated_NoTruncationReportsComplete(t *testing.T) {
	content := "<table><tr><td>A</td></tr></table>"
	fixed, was, _ := FixTruncated(content, true)
	if was || fixed != content {
		t.Fatalf("expected no truncation for complete content, got fixed=%q was=%v", fixed, was)
	}
}
