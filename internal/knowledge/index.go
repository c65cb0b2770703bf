package knowledge

import (
	"context"
	"fmt"
	"sort"

	"github.com/saurabhmj11/excel-mock-interviewer/internal/ai"
	"github.com/saurabhmj11/excel-mock-interviewer/internal/logger"
	"go.uber.org/zap"
)

// Index couples a Store with an embedder. It owns the build-once lifecycle of
// the knowledge base and exposes top-k similarity queries over it.
type Index struct {
	store    Store
	embedder ai.Embedder
	logger   *zap.Logger
}

func NewIndex(store Store, embedder ai.Embedder, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{store: store, embedder: embedder, logger: log}
}

// BulkLoad embeds and stores the given reference items. The load is idempotent
// by document count: when the store already holds exactly len(items) points,
// nothing is embedded or inserted again. Content changes that keep the count
// stable are not detected here; use Rebuild for that.
func (i *Index) BulkLoad(ctx context.Context, items []ReferenceItem) error {
	count, err := i.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: counting documents: %v", ErrBuild, err)
	}

	if count == len(items) && count > 0 {
		i.logger.Info("knowledge base is up to date, skipping build",
			zap.Int("documents", count),
		)
		return nil
	}

	return i.build(ctx, items)
}

// Rebuild drops the stored collection and loads the items from scratch.
func (i *Index) Rebuild(ctx context.Context, items []ReferenceItem) error {
	if err := i.store.Reset(ctx); err != nil {
		return fmt.Errorf("%w: resetting collection: %v", ErrBuild, err)
	}
	return i.build(ctx, items)
}

func (i *Index) build(ctx context.Context, items []ReferenceItem) error {
	if len(items) == 0 {
		i.logger.Warn("no reference items to load")
		return nil
	}

	if err := i.store.Init(ctx, i.embedder.Dimension()); err != nil {
		return fmt.Errorf("%w: initializing collection: %v", ErrBuild, err)
	}

	// Embed everything before inserting anything so a mid-build oracle
	// failure cannot leave a silently half-built collection behind.
	points := make([]Point, 0, len(items))
	for _, item := range items {
		vector, err := i.embedder.Embed(ctx, item.DocumentText)
		if err != nil {
			return fmt.Errorf("%w: embedding document %q: %v", ErrBuild, item.ID, err)
		}
		points = append(points, Point{
			ID:     item.ID,
			Vector: vector,
			Text:   item.DocumentText,
			Tags:   item.Tags,
		})
	}

	if err := i.store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("%w: inserting documents: %v", ErrBuild, err)
	}

	i.logger.Info("knowledge base built",
		zap.Int("documents", len(points)),
		zap.String(logger.FieldModel, i.embedder.Model()),
	)
	return nil
}

// Query returns up to k retrieved contexts ordered ascending by distance.
// An empty collection yields an empty result.
func (i *Index) Query(ctx context.Context, vector []float32, k int) ([]RetrievedContext, error) {
	if k <= 0 {
		k = 1
	}

	hits, err := i.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	results := make([]RetrievedContext, 0, len(hits))
	for _, hit := range hits {
		results = append(results, RetrievedContext{
			DocumentText: hit.Text,
			Tags:         hit.Tags,
			Distance:     hit.Distance,
		})
	}

	// Stores are expected to return ordered results; enforce it anyway so
	// callers can rely on closest-first.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})

	return results, nil
}
