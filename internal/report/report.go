// Package report turns a finished interview session into a markdown feedback
// report with a single templated call to the language model.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/ai"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/interview"
	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const systemPrompt = "You are an expert Excel interview feedback generator. You provide " +
	"comprehensive, constructive reports in clear Markdown format."

// Reporter generates the final feedback report.
type Reporter struct {
	generator ai.Generator
	logger    *zap.Logger
}

func New(generator ai.Generator, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{generator: generator, logger: logger}
}

// Generate produces the feedback report for the session. A model failure
// degrades to a minimal built-in report so the session wrap-up never fails.
func (r *Reporter) Generate(ctx context.Context, summary interview.Summary) string {
	prompt, err := buildPrompt(summary)
	if err != nil {
		r.logger.Warn("composing report prompt failed", zap.Error(err))
		return fallbackReport(summary)
	}

	report, err := r.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		r.logger.Warn("feedback report generation failed", zap.Error(err))
		return fallbackReport(summary)
	}

	return report
}

func buildPrompt(summary interview.Summary) (string, error) {
	results, err := json.MarshalIndent(summary.Questions, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding question results: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{SESSION_ID}}", summary.SessionID)
	prompt = strings.ReplaceAll(prompt, "{{TOTAL_QUESTIONS}}", strconv.Itoa(len(summary.Questions)))
	prompt = strings.ReplaceAll(prompt, "{{SCORE}}", formatScore(summary.TotalScore))
	prompt = strings.ReplaceAll(prompt, "{{MAX_SCORE}}", formatScore(summary.MaxScore))
	prompt = strings.ReplaceAll(prompt, "{{RESULTS_JSON}}", string(results))
	return prompt, nil
}

func fallbackReport(summary interview.Summary) string {
	var b strings.Builder
	b.WriteString("## Interview Summary\n\n")
	fmt.Fprintf(&b, "Session %s finished with a score of %s out of %s.\n\n",
		summary.SessionID, formatScore(summary.TotalScore), formatScore(summary.MaxScore))
	b.WriteString("A detailed feedback report could not be generated. ")
	b.WriteString("The per-question evaluations in the transcript remain available.\n")
	return b.String()
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
