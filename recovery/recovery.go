/* SPDX-License-Identifier: BSD-2-Clause */

// Package recovery detects and repairs truncated HTML/OTSL table output,
// the kind of incomplete markup produced when an upstream generator (an AI
// model, a streaming pipeline) is cut off mid-table.
package recovery

import (
	"regexp"
	"strings"
)

var trailingOpenTag = regexp.MustCompile(`(?i)<[a-z]+(?:\s|$)`)

// cellOpenTag matches an opening <td or <th, but not <thead.
var cellOpenTag = regexp.MustCompile(`<t[dh](?:[\s>]|$)`)

// IsHTMLTruncated reports whether html appears to be missing a closing
// </table>, </tr>, or </td>/</th>, or ends mid-tag.
func IsHTMLTruncated(html string) bool {
	lower := strings.ToLower(html)

	if strings.Count(lower, "<table") > strings.Count(lower, "</table>") {
		return true
	}
	if strings.Count(lower, "<tr") > strings.Count(lower, "</tr>") {
		return true
	}
	tdOpen := len(cellOpenTag.FindAllStringIndex(lower, -1))
	tdClose := strings.Count(lower, "</td>") + strings.Count(lower, "</th>")
	if tdOpen > tdClose {
		return true
	}

	tail := strings.TrimSpace(html)
	if len(tail) > 20 {
		tail = tail[len(tail)-20:]
	}
	return trailingOpenTag.MatchString(tail)
}

// AutoCloseHTML appends whatever </table> tags are needed to balance
// unmatched <table openings. It is a best-effort fixup, not a parser; for
// properly recovering malformed inner structure use htmltable.Parse in
// lenient mode.
func AutoCloseHTML(htmlStr string) string {
	lower := strings.ToLower(htmlStr)
	missing := strings.Count(lower, "<table") - strings.Count(lower, "</table>")
	if missing <= 0 {
		return htmlStr
	}
	return htmlStr + strings.Repeat("</table>", missing)
}

var trailingOpenOTSLTag = regexp.MustCompile(`(?i)<[a-z_]+$`)

// IsOTSLTruncated reports whether otsl appears to be missing its closing
// </otsl> tag, or ends mid-tag.
func IsOTSLTruncated(otsl string) bool {
	stripped := strings.TrimSpace(otsl)
	if strings.HasPrefix(stripped, "<otsl>") && !strings.HasSuffix(stripped, "</otsl>") {
		return true
	}
	return trailingOpenOTSLTag.MatchString(stripped)
}

// AutoCloseOTSL appends a </otsl> tag if the stream looks like it was cut
// off before one was emitted.
func AutoCloseOTSL(otsl string) string {
	stripped := strings.TrimSpace(otsl)
	if strings.HasPrefix(stripped, "<otsl>") && !strings.HasSuffix(stripped, "</otsl>") {
		return otsl + "</otsl>"
	}
	return otsl
}

// ContentType classifies which wire format DetectTruncation examined.
type ContentType int

const (
	ContentUnknown ContentType = iota
	ContentHTML
	ContentOTSL
)

// DetectTruncation classifies content as HTML or OTSL and reports whether
// it looks truncated, along with a human-readable reason.
func DetectTruncation(content string) (truncated bool, ctype ContentType, reason string) {
	lower := strings.ToLower(strings.TrimSpace(content))

	switch {
	case strings.HasPrefix(lower, "<otsl>"):
		ctype = ContentOTSL
	case strings.Contains(lower, "<table"):
		ctype = ContentHTML
	default:
		return false, ContentUnknown, "not html or otsl"
	}

	if ctype == ContentHTML {
		if !IsHTMLTruncated(content) {
			return false, ContentHTML, "complete html"
		}
		switch {
		case !strings.Contains(lower, "</table>"):
			return true, ContentHTML, "missing closing </table> tag"
		case strings.Count(lower, "<tr") > strings.Count(lower, "</tr>"):
			return true, ContentHTML, "unclosed <tr> tags"
		case len(cellOpenTag.FindAllStringIndex(lower, -1)) > strings.Count(lower, "</td>")+strings.Count(lower, "</th>"):
			return true, ContentHTML, "unclosed <td>/<th> tags"
		default:
			return true, ContentHTML, "incomplete tag syntax"
		}
	}

	if !IsOTSLTruncated(content) {
		return false, ContentOTSL, "complete otsl"
	}
	if !strings.Contains(content, "</otsl>") {
		return true, ContentOTSL, "missing closing </otsl> tag"
	}
	return true, ContentOTSL, "incomplete tag syntax"
}

// FixTruncated detects truncation in content and, when autoFix is true,
// applies the matching auto-close repair. It returns the (possibly
// unmodified) content, whether truncation was detected, and a message
// describing what happened.
func FixTruncated(content string, autoFix bool) (fixed string, wasTruncated bool, message string) {
	truncated, ctype, reason := DetectTruncation(content)
	if !truncated {
		return content, false, "no truncation detected"
	}
	if !autoFix {
		return content, true, "truncated: " + reason + " (not fixed)"
	}

	switch ctype {
	case ContentHTML:
		return AutoCloseHTML(content), true, "fixed: added missing closing tag(s)"
	case ContentOTSL:
		return AutoCloseOTSL(content), true, "fixed: added missing </otsl> tag"
	default:
		return content, true, "truncated but cannot fix: " + reason
	}
}
