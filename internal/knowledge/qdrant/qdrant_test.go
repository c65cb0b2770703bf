package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/knowledge"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := NewStore(Config{URL: server.URL, Collection: "excel_interview_qa"})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestCountMissingCollectionIsZero(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero count, got %d", count)
	}
}

func TestCountReturnsResult(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/excel_interview_qa/points/count" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": 7}})
	})

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
}

func TestCountBackendFailure(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := store.Count(context.Background()); err == nil {
		t.Fatal("expected error on backend failure")
	}
}

func TestSearchDecodesPayloadAndConvertsScore(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/excel_interview_qa/points/search" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req["limit"].(float64) != 2 {
			t.Fatalf("unexpected limit: %v", req["limit"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"score": 0.95,
					"payload": map[string]any{
						"item_id":       "q_sum",
						"text":          "SUM adds a range of numbers.",
						"question_id":   "q_sum",
						"question_text": "What does SUM do?",
						"difficulty":    "easy",
						"topic":         "Formulas",
					},
				},
				{
					"score": 0.40,
					"payload": map[string]any{
						"text":        "VLOOKUP finds values in a table.",
						"question_id": "q_vlookup",
					},
				},
			},
		})
	})

	hits, err := store.Search(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Text != "SUM adds a range of numbers." {
		t.Fatalf("unexpected text: %q", hits[0].Text)
	}
	if hits[0].Tags.Topic != "Formulas" || hits[0].Tags.QuestionID != "q_sum" {
		t.Fatalf("payload not decoded into tags: %+v", hits[0].Tags)
	}

	if got := hits[0].Distance; got < 0.04 || got > 0.06 {
		t.Fatalf("expected distance ~0.05, got %f", got)
	}
	if hits[1].Distance <= hits[0].Distance {
		t.Fatalf("expected ascending distance, got %+v", hits)
	}
}

func TestUpsertSendsUUIDPointIDs(t *testing.T) {
	var captured map[string]any
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := store.Upsert(context.Background(), []knowledge.Point{
		{ID: "q_sum", Vector: []float32{1, 0, 0}, Text: "SUM adds a range of numbers."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points := captured["points"].([]any)
	point := points[0].(map[string]any)

	id := point["id"].(string)
	if id == "q_sum" || len(id) != 36 {
		t.Fatalf("expected derived UUID point id, got %q", id)
	}
	if id != pointID("q_sum") {
		t.Fatalf("point id must be stable for the same item id")
	}

	payload := point["payload"].(map[string]any)
	if payload["item_id"] != "q_sum" {
		t.Fatalf("original item id missing from payload: %+v", payload)
	}
}

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore(Config{Collection: "c"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewStore(Config{URL: "http://localhost:6333"}); err == nil {
		t.Fatal("expected error for missing collection")
	}
}
