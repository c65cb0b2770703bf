// Package qdrant is a minimal REST client to a Qdrant collection, used as the
// persistent knowledge store. It assumes cosine distance and converts Qdrant's
// similarity scores into distances (lower = more similar).
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/knowledge"
)

const defaultTimeout = 15 * time.Second

// Store talks to one Qdrant collection over its HTTP API.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// Config configures the Qdrant store.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Count returns the exact number of stored points. A missing collection counts
// as zero so a fresh deployment triggers a build instead of an error.
func (s *Store) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection)
	status, err := s.doJSON(ctx, http.MethodPost, url, map[string]any{"exact": true}, &resp)
	if err != nil {
		if status == http.StatusNotFound {
			return 0, nil
		}
		return 0, err
	}

	return resp.Result.Count, nil
}

// Init creates the collection if missing. Qdrant answers 200 for an existing
// collection with the same schema.
func (s *Store) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}

	url := fmt.Sprintf("%s/collections/%s", s.url, s.collection)
	if _, err := s.doJSON(ctx, http.MethodPut, url, body, nil); err != nil {
		return err
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, points []knowledge.Point) error {
	if len(points) == 0 {
		return nil
	}

	payload := make([]map[string]any, len(points))
	for i, p := range points {
		payload[i] = map[string]any{
			// Qdrant point IDs must be integers or UUIDs; derive a stable
			// UUID from the item ID and keep the original in the payload.
			"id":     pointID(p.ID),
			"vector": p.Vector,
			"payload": map[string]any{
				"item_id":       p.ID,
				"text":          p.Text,
				"question_id":   p.Tags.QuestionID,
				"question_text": p.Tags.QuestionText,
				"difficulty":    p.Tags.Difficulty,
				"topic":         p.Tags.Topic,
			},
		}
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection)
	_, err := s.doJSON(ctx, http.MethodPut, url, map[string]any{"points": payload}, nil)
	return err
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]knowledge.SearchHit, error) {
	if k <= 0 {
		k = 1
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection)
	if _, err := s.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}

	hits := make([]knowledge.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		var tags knowledge.Tags
		if err := mapstructure.Decode(r.Payload, &tags); err != nil {
			return nil, fmt.Errorf("decoding payload: %w", err)
		}

		text, _ := r.Payload["text"].(string)
		hits = append(hits, knowledge.SearchHit{
			Text: text,
			Tags: tags,
			// Cosine similarity in [-1, 1] becomes a distance in [0, 2].
			Distance: 1 - r.Score,
		})
	}

	return hits, nil
}

// Reset drops the collection. The next Init recreates it.
func (s *Store) Reset(ctx context.Context) error {
	url := fmt.Sprintf("%s/collections/%s", s.url, s.collection)
	status, err := s.doJSON(ctx, http.MethodDelete, url, nil, nil)
	if err != nil && status != http.StatusNotFound {
		return err
	}
	return nil
}

func pointID(itemID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(itemID)).String()
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}
