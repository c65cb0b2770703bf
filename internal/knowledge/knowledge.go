// Package knowledge implements the retrieval side of answer grading: a
// vector-backed knowledge base of reference answers and a retriever that
// supplies grounding context for the grading prompt.
package knowledge

import (
	"context"
	"errors"
)

// ErrBuild reports a failed knowledge base build. A build either commits every
// reference item or fails as a whole; the caller decides whether to continue
// without retrieval.
var ErrBuild = errors.New("knowledge base build failed")

// ErrQuery reports a backend failure during similarity search. It is distinct
// from an empty result set.
var ErrQuery = errors.New("knowledge base query failed")

// Tags carries the retrievable metadata stored next to each reference answer.
type Tags struct {
	QuestionID   string `json:"question_id" mapstructure:"question_id"`
	QuestionText string `json:"question_text" mapstructure:"question_text"`
	Difficulty   string `json:"difficulty" mapstructure:"difficulty"`
	Topic        string `json:"topic" mapstructure:"topic"`
}

// ReferenceItem is a single unit of reference knowledge. The document text is
// what gets embedded and retrieved; the question text rides along as metadata
// to keep retrieved context attributable.
type ReferenceItem struct {
	ID           string
	DocumentText string
	Tags         Tags
}

// RetrievedContext is one similarity-search result. Distance is non-negative
// and lower means more similar.
type RetrievedContext struct {
	DocumentText string
	Tags         Tags
	Distance     float64
}

// Point is a stored record: an embedded reference item.
type Point struct {
	ID     string
	Vector []float32
	Text   string
	Tags   Tags
}

// SearchHit is a raw store result before conversion to RetrievedContext.
type SearchHit struct {
	Text     string
	Tags     Tags
	Distance float64
}

// Store is a nearest-neighbor backend holding embedded reference items.
// Implementations report real failures as errors; an empty collection yields
// an empty result set, not an error.
type Store interface {
	// Count returns the number of stored points. A missing collection counts
	// as zero.
	Count(ctx context.Context) (int, error)
	// Init prepares the collection for vectors of the given dimension.
	Init(ctx context.Context, dimension int) error
	// Upsert stores the given points keyed by their IDs.
	Upsert(ctx context.Context, points []Point) error
	// Search returns up to k nearest neighbors ordered ascending by distance.
	Search(ctx context.Context, vector []float32, k int) ([]SearchHit, error)
	// Reset drops all stored points.
	Reset(ctx context.Context) error
}
