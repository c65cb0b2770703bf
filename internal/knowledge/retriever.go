package knowledge

import (
	"context"
	"strings"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/ai"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/logger"
	"go.uber.org/zap"
)

// Querier is the part of Index the retriever uses.
type Querier interface {
	Query(ctx context.Context, vector []float32, k int) ([]RetrievedContext, error)
}

// Retriever turns a query string into grounding context. Retrieval is an
// accuracy enhancer, not a dependency: every failure degrades to an empty
// result so grading can proceed without context.
type Retriever struct {
	index    Querier
	embedder ai.Embedder
	logger   *zap.Logger
}

func NewRetriever(index Querier, embedder ai.Embedder, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{index: index, embedder: embedder, logger: log}
}

// Retrieve embeds the query and returns up to k most similar reference
// documents, closest first. A blank query returns nothing without calling the
// embedder. Embedder or index failures are logged and swallowed.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []RetrievedContext {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("embedding query failed, grading without context",
			zap.String("query", logger.TruncateForLog(query, 80)),
			zap.Error(err),
		)
		return nil
	}

	results, err := r.index.Query(ctx, vector, k)
	if err != nil {
		r.logger.Warn("context retrieval failed, grading without context",
			zap.String("query", logger.TruncateForLog(query, 80)),
			zap.Error(err),
		)
		return nil
	}

	return results
}
