package core

import (
	"regexp"
	"strings"
)

// The model returns markdown-style emphasis that downstream consumers render
// as HTML. Normalization is a fixed, ordered set of pure text rewrites: the
// item-specific rules must run before the generic bold rule, otherwise the
// generic rule consumes the markers first and the item rules never match.

type textRule struct {
	pattern *regexp.Regexp
	replace string
}

var (
	// "1. **제품명**: 12,000원" -> "1. <strong>제품명</strong>: <strong>12,000원</strong>"
	boldAmountItemRule = textRule{
		pattern: regexp.MustCompile(`(\d+\.\s+)\*\*(.+?)\*\*:\s+([\d,]+원)`),
		replace: `$1<strong>$2</strong>: <strong>$3</strong>`,
	}

	// "*   **1월:** 32,400.0" -> "*   <strong>1월:</strong> 32,400.0"
	boldMonthItemRule = textRule{
		pattern: regexp.MustCompile(`\*\s+\*\*(\d+월):\*\*\s+([\d,.]+)`),
		replace: `*   <strong>$1:</strong> $2`,
	}

	// generic "**bold**" -> "<strong>bold</strong>", spans may cross lines
	boldSpanRule = textRule{
		pattern: regexp.MustCompile(`(?s)\*\*(.+?)\*\*`),
		replace: `<strong>$1</strong>`,
	}
)

var textRules = []textRule{boldAmountItemRule, boldMonthItemRule, boldSpanRule}

var htmlRules = []textRule{boldAmountItemRule, boldSpanRule}

func applyRules(text string, rules []textRule) string {
	for _, rule := range rules {
		text = rule.pattern.ReplaceAllString(text, rule.replace)
	}
	return text
}

// NormalizeText rewrites markdown emphasis in a plain-text model answer into
// inline HTML and converts bare newlines to <br>, unless the answer already
// looks like markup. Running it on already-normalized text is a no-op.
func NormalizeText(text string) string {
	if text == "" {
		return text
	}

	text = applyRules(text, textRules)

	lower := strings.ToLower(text)
	if !strings.Contains(lower, "<html") && !strings.Contains(lower, "<div") {
		text = strings.ReplaceAll(text, "\n", "<br>")
	}
	return text
}

// NormalizeHTML rewrites leftover markdown emphasis inside a generated HTML
// report. Newlines are kept as-is; HTML handles its own line breaks.
func NormalizeHTML(html string) string {
	if html == "" {
		return html
	}
	return applyRules(html, htmlRules)
}

// stripCodeFence removes one level of triple-backtick fencing (optionally
// labeled, e.g. ```sql or ```json) from a model response.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
