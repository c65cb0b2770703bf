package interview

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/grader"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/question"
)

func gradedSession() *Session {
	s := NewSession()
	s.Record(
		question.Question{ID: "q1", Text: "What does SUM do?", Difficulty: "easy", Topic: "Formulas"},
		"It adds numbers together.",
		&grader.Verdict{QuestionID: "q1", Correctness: grader.Correct, Justification: "good"},
	)
	s.Record(
		question.Question{ID: "q2", Text: "Explain VLOOKUP.", Difficulty: "medium", Topic: "Lookup"},
		"It looks things up.",
		&grader.Verdict{QuestionID: "q2", Correctness: grader.PartiallyCorrect, Justification: "shallow"},
	)
	s.Record(
		question.Question{ID: "q3", Text: "Explain Power Query.", Difficulty: "hard", Topic: "Data"},
		"I don't know.",
		&grader.Verdict{QuestionID: "q3", Correctness: grader.Incorrect, Justification: "missing"},
	)
	return s
}

func TestTotalScoreIsPureFold(t *testing.T) {
	s := gradedSession()

	if got := s.TotalScore(); got != 1.5 {
		t.Fatalf("expected total 1.5, got %v", got)
	}
	if got := s.MaxScore(); got != 3 {
		t.Fatalf("expected max 3, got %v", got)
	}

	// Recomputing must not change anything.
	if got := s.TotalScore(); got != 1.5 {
		t.Fatalf("expected stable total 1.5, got %v", got)
	}
}

func TestErrorVerdictAddsNothing(t *testing.T) {
	s := NewSession()
	s.Record(
		question.Question{ID: "q1", Text: "a"},
		"answer",
		&grader.Verdict{QuestionID: "q1", Correctness: grader.CorrectnessError},
	)

	if got := s.TotalScore(); got != 0 {
		t.Fatalf("expected 0 for error verdict, got %v", got)
	}
	if got := s.MaxScore(); got != 1 {
		t.Fatalf("error verdicts still count as asked, got max %v", got)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()
	if s.Status != StatusActive {
		t.Fatalf("expected active session, got %s", s.Status)
	}
	if s.ID == "" {
		t.Fatal("expected a session id")
	}

	s.Complete()
	if s.Status != StatusCompleted || s.EndedAt.IsZero() {
		t.Fatalf("expected completed session with end time, got %+v", s)
	}

	aborted := NewSession()
	aborted.Abort()
	if aborted.Status != StatusAborted {
		t.Fatalf("expected aborted session, got %s", aborted.Status)
	}
}

func TestSummaryFlattensExchanges(t *testing.T) {
	s := gradedSession()
	s.Complete()

	summary := s.Summary()
	if summary.SessionID != s.ID {
		t.Fatalf("unexpected session id: %q", summary.SessionID)
	}
	if len(summary.Questions) != 3 {
		t.Fatalf("expected 3 results, got %d", len(summary.Questions))
	}
	if summary.TotalScore != 1.5 || summary.MaxScore != 3 {
		t.Fatalf("unexpected scores: %v / %v", summary.TotalScore, summary.MaxScore)
	}

	first := summary.Questions[0]
	if first.Number != 1 || first.QuestionID != "q1" || first.Score != 1.0 {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if first.Correctness != string(grader.Correct) {
		t.Fatalf("unexpected correctness: %q", first.Correctness)
	}
}

func TestSaveTranscriptRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")
	s := gradedSession()
	s.Complete()

	path, err := SaveTranscript(dir, s.Summary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var loaded Summary
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("transcript is not valid JSON: %v", err)
	}
	if loaded.SessionID != s.ID || loaded.TotalScore != 1.5 {
		t.Fatalf("unexpected transcript content: %+v", loaded)
	}
}

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")

	path, err := SaveReport(dir, "abc", "## Report\nWell done.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "## Report\nWell done." {
		t.Fatalf("unexpected report content: %q", string(data))
	}
}
