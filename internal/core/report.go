package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/heechang-soft/hcman-ai/internal/llm"
)

// Questions matching these keywords get the graph-oriented summary prompt.
var graphKeywords = []string{"추이", "그래프", "차트", "chart", "trend"}

// reportEnvelope is the JSON shape requested from the model for reports.
type reportEnvelope struct {
	Summary    string `json:"summary"`
	HTMLReport string `json:"html_report"`
	Notes      string `json:"notes"`
}

// ReportBuilder turns tabular result data plus the original question into a
// short natural-language summary or a full HTML report.
type ReportBuilder struct {
	llm llm.Completer
}

func NewReportBuilder(completer llm.Completer) *ReportBuilder {
	return &ReportBuilder{llm: completer}
}

// Summarize produces a natural-language answer for the question and data.
// The model's markdown emphasis is normalized into inline HTML.
func (b *ReportBuilder) Summarize(ctx context.Context, question, data string) (string, error) {
	prompt := summarizePrompt(question, data)
	if needsGraph(question) {
		prompt = graphSummarizePrompt(question, data)
	}

	raw, err := b.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}

	return NormalizeText(strings.TrimSpace(raw)), nil
}

// GenerateReport requests a {summary, html_report, notes} envelope from the
// model. The returned HTML is never empty: if the envelope cannot be parsed
// the raw text becomes the summary, and if html_report is missing a minimal
// document wrapping the summary is synthesized instead.
func (b *ReportBuilder) GenerateReport(ctx context.Context, question, data string) (summary, html string, err error) {
	raw, err := b.llm.Complete(ctx, reportPrompt(question, data))
	if err != nil {
		return "", "", fmt.Errorf("report request failed: %w", err)
	}

	content := stripCodeFence(raw)

	var envelope reportEnvelope
	if jsonErr := json.Unmarshal([]byte(content), &envelope); jsonErr != nil {
		log.Printf("Report envelope was not valid JSON, using raw text as summary: %v", jsonErr)
		summary = content
	} else {
		summary = strings.TrimSpace(envelope.Summary)
		html = envelope.HTMLReport
		if envelope.Notes != "" {
			summary = summary + "\n\n[추가 안내]\n" + envelope.Notes
		}
	}

	if html == "" {
		html = basicHTMLReport(summary)
	} else {
		html = NormalizeHTML(html)
	}

	return summary, html, nil
}

func needsGraph(question string) bool {
	lower := strings.ToLower(question)
	for _, keyword := range graphKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// basicHTMLReport wraps a summary in a minimal self-contained document so the
// report contract holds even when the model omits the HTML.
func basicHTMLReport(summary string) string {
	safeSummary := strings.ReplaceAll(summary, "\n", "<br>")
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="ko">
<head>
  <meta charset="UTF-8" />
  <title>AI 보고서</title>
  <style>
    body {
      font-family: 'Pretendard', 'Noto Sans KR', sans-serif;
      margin: 0;
      padding: 32px;
      background: #f4f6fb;
      color: #1f2a44;
      line-height: 1.6;
    }
    .card {
      background: #ffffff;
      border-radius: 16px;
      padding: 32px;
      box-shadow: 0 20px 60px rgba(15, 23, 42, 0.15);
      max-width: 960px;
      margin: 0 auto;
    }
    h1 {
      font-size: 2rem;
      margin-bottom: 1rem;
    }
  </style>
</head>
<body>
  <main class="card">
    <h1>AI 생성 보고서</h1>
    <p>%s</p>
  </main>
</body>
</html>`, safeSummary)
}
