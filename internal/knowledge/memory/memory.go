// Package memory is an in-memory knowledge store using brute-force cosine
// distance. It backs tests and runs without a vector database server.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/knowledge"
)

// Store keeps all points in memory and scans them on every search.
type Store struct {
	mu        sync.RWMutex
	dimension int
	points    []knowledge.Point
}

func NewStore() *Store { return &Store{} }

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points), nil
}

func (s *Store) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.points = nil
	return nil
}

func (s *Store) Upsert(_ context.Context, points []knowledge.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		if s.dimension > 0 && len(p.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, p := range points {
		s.points = replaceOrAppend(s.points, p)
	}
	return nil
}

func (s *Store) Search(_ context.Context, vector []float32, k int) ([]knowledge.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		k = 1
	}

	hits := make([]knowledge.SearchHit, 0, len(s.points))
	queryNorm := vectorNorm(vector)
	for _, p := range s.points {
		if len(p.Vector) != len(vector) {
			continue
		}
		hits = append(hits, knowledge.SearchHit{
			Text:     p.Text,
			Tags:     p.Tags,
			Distance: cosineDistance(vector, p.Vector, queryNorm),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = nil
	return nil
}

func replaceOrAppend(points []knowledge.Point, p knowledge.Point) []knowledge.Point {
	for i := range points {
		if points[i].ID == p.ID {
			points[i] = p
			return points
		}
	}
	return append(points, p)
}

// cosineDistance is 1 - cosine similarity, so it stays non-negative and lower
// means more similar.
func cosineDistance(a, b []float32, normA float64) float64 {
	normB := vectorNorm(b)
	if normA == 0 || normB == 0 {
		return 1
	}
	dot := 0.0
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	// Rounding can push 1 - similarity a hair below zero for identical vectors.
	return math.Max(0, 1-dot/(normA*normB))
}

func vectorNorm(v []float32) float64 {
	sum := 0.0
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	return math.Sqrt(sum)
}
