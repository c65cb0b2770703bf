// Package grader evaluates candidate answers with a language model, grounded
// by retrieved reference knowledge. Grading never fails: every answer yields a
// verdict, with oracle failures mapped to the Error classification.
package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/ai"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/knowledge"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/logger"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/question"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

//go:embed prompt.md
var promptTemplate string

const systemPrompt = "You are an expert Excel interview evaluator with deep knowledge of " +
	"all functionalities of Microsoft Excel. You always output valid JSON according to the " +
	"requested schema."

const (
	contextHeader = "--- Relevant Excel Knowledge ---"
	contextFooter = "------------------------------------"

	defaultTopK         = 1
	defaultMaxLogLength = 200

	noJustification = "No justification provided by the evaluator."
	noTips          = "No specific tips provided by the evaluator."
)

// contextRetriever is the part of knowledge.Retriever the grader uses.
type contextRetriever interface {
	Retrieve(ctx context.Context, query string, k int) []knowledge.RetrievedContext
}

// Grader orchestrates one evaluation: retrieve grounding context, compose the
// grading prompt, invoke the oracle, and normalize the response into a Verdict.
// Graders are stateless across calls.
type Grader struct {
	generator ai.Generator
	retriever contextRetriever
	topK      int
	maxLogLen int
	logger    *zap.Logger
}

// Config tunes grading behaviour.
type Config struct {
	// TopK is the number of reference documents retrieved per question.
	TopK int
	// MaxLogLength caps prompt/response previews in debug logs.
	MaxLogLength int
}

// New creates a Grader. The retriever may be nil, in which case all grading
// happens without grounding context.
func New(generator ai.Generator, retriever contextRetriever, cfg Config, log *zap.Logger) *Grader {
	if log == nil {
		log = zap.NewNop()
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Grader{
		generator: generator,
		retriever: retriever,
		topK:      topK,
		maxLogLen: maxLogLen,
		logger:    log,
	}
}

// ResponseSchema describes the JSON object the grader requests from the
// oracle. The transport does not enforce it; Grade still parses defensively.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"correctness": {
				Type: genai.TypeString,
				Enum: []string{string(Correct), string(PartiallyCorrect), string(Incorrect)},
			},
			"justification":        {Type: genai.TypeString},
			"tips_for_improvement": {Type: genai.TypeString},
		},
		Required: []string{"correctness", "justification", "tips_for_improvement"},
	}
}

// Grade evaluates the candidate's answer to the given question. It always
// returns a verdict: failures of the retrieval layer degrade to ungrounded
// grading, failures of the judgment oracle yield an Error verdict.
func (g *Grader) Grade(ctx context.Context, q question.Question, answer string) *Verdict {
	var contexts []knowledge.RetrievedContext
	if g.retriever != nil {
		contexts = g.retriever.Retrieve(ctx, q.Text, g.topK)
	}

	if len(contexts) > 0 {
		g.logger.Debug("retrieved grounding context",
			zap.String(logger.FieldQuestion, q.ID),
			zap.Int("documents", len(contexts)),
			zap.Float64("closest_distance", contexts[0].Distance),
		)
	} else {
		g.logger.Debug("grading without grounding context",
			zap.String(logger.FieldQuestion, q.ID),
		)
	}

	prompt := buildPrompt(q.Text, answer, contexts)

	g.logger.Debug("grading request",
		zap.String(logger.FieldQuestion, q.ID),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.maxLogLen)),
	)

	raw, err := g.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		g.logger.Warn("evaluation request failed",
			zap.String(logger.FieldQuestion, q.ID),
			zap.Error(err),
		)
		return &Verdict{
			QuestionID:    q.ID,
			Answer:        answer,
			Correctness:   CorrectnessError,
			Justification: fmt.Sprintf("The evaluation service was unavailable: %v", err),
			Tips:          "This answer could not be evaluated. It does not count against you.",
		}
	}

	g.logger.Debug("grading response",
		zap.String(logger.FieldQuestion, q.ID),
		zap.String("response_preview", logger.TruncateForLog(raw, g.maxLogLen)),
	)

	return g.parseVerdict(q.ID, answer, raw)
}

func (g *Grader) parseVerdict(questionID, answer, raw string) *Verdict {
	cleaned := extractJSON(raw)

	var payload struct {
		Correctness   string `json:"correctness"`
		Justification string `json:"justification"`
		Tips          string `json:"tips_for_improvement"`
	}

	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		g.logger.Warn("evaluator returned invalid JSON",
			zap.String(logger.FieldQuestion, questionID),
			zap.String("response_preview", logger.TruncateForLog(raw, g.maxLogLen)),
			zap.Error(err),
		)
		return &Verdict{
			QuestionID:    questionID,
			Answer:        answer,
			Correctness:   CorrectnessError,
			Justification: fmt.Sprintf("The evaluator response was not valid JSON: %v", err),
			Tips:          "This answer could not be evaluated. It does not count against you.",
		}
	}

	correctness, accepted := ParseCorrectness(payload.Correctness)
	if !accepted {
		g.logger.Warn("evaluator returned unexpected correctness, falling back to Incorrect",
			zap.String(logger.FieldQuestion, questionID),
			zap.String("correctness", payload.Correctness),
		)
	}

	justification := strings.TrimSpace(payload.Justification)
	if justification == "" {
		justification = noJustification
	}

	tips := strings.TrimSpace(payload.Tips)
	if tips == "" {
		tips = noTips
	}

	return &Verdict{
		QuestionID:    questionID,
		Answer:        answer,
		Correctness:   correctness,
		Justification: justification,
		Tips:          tips,
	}
}

// buildPrompt fills the grading template. Retrieved documents go into a
// clearly demarcated knowledge block so the oracle cannot confuse grounding
// text with the candidate's answer.
func buildPrompt(questionText, answer string, contexts []knowledge.RetrievedContext) string {
	block := ""
	if len(contexts) > 0 {
		docs := make([]string, 0, len(contexts))
		for _, c := range contexts {
			docs = append(docs, c.DocumentText)
		}
		block = "\n" + contextHeader + "\n" + strings.Join(docs, "\n") + "\n" + contextFooter + "\n"
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{QUESTION}}", questionText)
	prompt = strings.ReplaceAll(prompt, "{{ANSWER}}", answer)
	prompt = strings.ReplaceAll(prompt, "{{CONTEXT}}", block)
	return prompt
}

// extractJSON strips markdown code fences some models wrap around JSON output.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
