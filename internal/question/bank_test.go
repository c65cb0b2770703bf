package question

import (
	"os"
	"path/filepath"
	"testing"
)

func writeBank(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBankSortsByDifficulty(t *testing.T) {
	path := writeBank(t, `[
		{"id": "q_hard", "text": "Explain Power Query.", "difficulty": "hard", "topic": "Data", "ideal_answer": "..."},
		{"id": "q_easy", "text": "What does SUM do?", "difficulty": "easy", "topic": "Formulas", "ideal_answer": "SUM adds a range of numbers."},
		{"id": "q_mid", "text": "Explain VLOOKUP.", "difficulty": "medium", "topic": "Lookup", "ideal_answer": "..."}
	]`)

	questions, err := LoadBank(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{questions[0].ID, questions[1].ID, questions[2].ID}
	want := []string{"q_easy", "q_mid", "q_hard"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
}

func TestLoadBankKeepsOrderWithinDifficulty(t *testing.T) {
	path := writeBank(t, `[
		{"id": "first", "text": "a"},
		{"id": "second", "text": "b"},
		{"id": "third", "text": "c"}
	]`)

	questions, err := LoadBank(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, id := range []string{"first", "second", "third"} {
		if questions[i].ID != id {
			t.Fatalf("expected stable order, got %+v", questions)
		}
	}
}

func TestLoadBankAppliesDefaults(t *testing.T) {
	path := writeBank(t, `[{"id": "q1", "text": "What does SUM do?"}]`)

	questions, err := LoadBank(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if questions[0].Difficulty != DifficultyMedium {
		t.Fatalf("expected default difficulty, got %q", questions[0].Difficulty)
	}
	if questions[0].Topic != "General" {
		t.Fatalf("expected default topic, got %q", questions[0].Topic)
	}
}

func TestLoadBankRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "not json at all"},
		{name: "missing id", content: `[{"text": "a question"}]`},
		{name: "empty text", content: `[{"id": "q1", "text": ""}]`},
		{name: "unknown difficulty", content: `[{"id": "q1", "text": "a", "difficulty": "impossible"}]`},
		{name: "unknown field", content: `[{"id": "q1", "text": "a", "answer": "b"}]`},
		{name: "empty bank", content: `[]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeBank(t, tc.content)
			if _, err := LoadBank(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadBankMissingFile(t *testing.T) {
	if _, err := LoadBank(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
