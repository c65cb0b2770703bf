// Package interview keeps the bookkeeping of one interview session: which
// questions were asked, what the candidate answered, and the verdicts the
// grader produced. Scoring is a pure fold over immutable verdicts.
package interview

import (
	"time"

	"github.com/google/uuid"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/grader"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/question"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Exchange is one asked question together with the candidate's answer and the
// grader's verdict.
type Exchange struct {
	Question   question.Question
	Answer     string
	Verdict    *grader.Verdict
	AnsweredAt time.Time
}

// Session accumulates the exchanges of one interview run. Verdicts are stored
// as returned by the grader and never modified afterwards.
type Session struct {
	ID        string
	Status    Status
	StartedAt time.Time
	EndedAt   time.Time

	exchanges []Exchange
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Status:    StatusActive,
		StartedAt: time.Now(),
	}
}

// Record appends one graded exchange to the session.
func (s *Session) Record(q question.Question, answer string, verdict *grader.Verdict) {
	s.exchanges = append(s.exchanges, Exchange{
		Question:   q,
		Answer:     answer,
		Verdict:    verdict,
		AnsweredAt: time.Now(),
	})
}

// Complete marks the session as finished.
func (s *Session) Complete() {
	s.Status = StatusCompleted
	s.EndedAt = time.Now()
}

// Abort marks the session as terminated by the candidate.
func (s *Session) Abort() {
	s.Status = StatusAborted
	s.EndedAt = time.Now()
}

// Answered returns the number of graded exchanges.
func (s *Session) Answered() int {
	return len(s.exchanges)
}

// TotalScore sums the scores of all recorded verdicts. It recomputes from the
// verdicts on every call; there is no running counter to drift out of sync.
func (s *Session) TotalScore() float64 {
	total := 0.0
	for _, e := range s.exchanges {
		if e.Verdict != nil {
			total += e.Verdict.Score()
		}
	}
	return total
}

// MaxScore is the best possible score: one point per asked question.
func (s *Session) MaxScore() float64 {
	return float64(len(s.exchanges))
}

// Summary is the serializable view of a session used for transcripts and the
// feedback report prompt.
type Summary struct {
	SessionID  string           `json:"session_id"`
	Status     Status           `json:"status"`
	StartedAt  time.Time        `json:"start_time"`
	EndedAt    time.Time        `json:"end_time,omitzero"`
	Questions  []QuestionResult `json:"questions"`
	TotalScore float64          `json:"total_score"`
	MaxScore   float64          `json:"max_score"`
}

// QuestionResult is one exchange flattened for serialization. Score is copied
// from the verdict's fixed mapping at summary time.
type QuestionResult struct {
	Number        int     `json:"question_number"`
	QuestionID    string  `json:"question_id"`
	QuestionText  string  `json:"question_text"`
	Difficulty    string  `json:"difficulty"`
	Topic         string  `json:"topic"`
	Answer        string  `json:"user_response"`
	Correctness   string  `json:"correctness"`
	Justification string  `json:"justification"`
	Tips          string  `json:"tips_for_improvement"`
	Score         float64 `json:"score"`
}

func (s *Session) Summary() Summary {
	results := make([]QuestionResult, 0, len(s.exchanges))
	for i, e := range s.exchanges {
		result := QuestionResult{
			Number:       i + 1,
			QuestionID:   e.Question.ID,
			QuestionText: e.Question.Text,
			Difficulty:   e.Question.Difficulty,
			Topic:        e.Question.Topic,
			Answer:       e.Answer,
		}
		if e.Verdict != nil {
			result.Correctness = string(e.Verdict.Correctness)
			result.Justification = e.Verdict.Justification
			result.Tips = e.Verdict.Tips
			result.Score = e.Verdict.Score()
		}
		results = append(results, result)
	}

	return Summary{
		SessionID:  s.ID,
		Status:     s.Status,
		StartedAt:  s.StartedAt,
		EndedAt:    s.EndedAt,
		Questions:  results,
		TotalScore: s.TotalScore(),
		MaxScore:   s.MaxScore(),
	}
}
