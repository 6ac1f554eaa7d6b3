package memory

import (
	"context"
	"sort"
	"time"

	"github.com/sandevgo/membot/internal/core"
	"github.com/sandevgo/membot/pkg/log"
)

// Default per-lookup limits (K).
const (
	DefaultSemanticLimit = 5
	DefaultTemporalLimit = 5
)

// Retriever merges semantic nearest-neighbor lookup with temporally
// filtered lookup against the memory store.
type Retriever struct {
	store         core.MemoryStore
	semanticLimit int
	temporalLimit int
}

func NewRetriever(store core.MemoryStore, semanticLimit, temporalLimit int) *Retriever {
	if semanticLimit <= 0 {
		semanticLimit = DefaultSemanticLimit
	}
	if temporalLimit <= 0 {
		temporalLimit = DefaultTemporalLimit
	}
	return &Retriever{
		store:         store,
		semanticLimit: semanticLimit,
		temporalLimit: temporalLimit,
	}
}

// Retrieve runs both lookups and unions the results by record id.
// SemanticCount and TemporalCount carry the raw per-lookup counts; the
// merged memories come back in createdAt ascending order for
// chronological replay.
func (r *Retriever) Retrieve(ctx context.Context, authorID string, embedding []float32, intent core.TemporalIntent) (core.HybridResult, error) {
	semantic, err := r.store.QuerySemantic(ctx, authorID, embedding, r.semanticLimit)
	if err != nil {
		return core.HybridResult{}, core.NewRetrievalError(err, "semantic lookup")
	}

	var temporal []core.MemoryRecord
	if intent.HasRange() {
		temporal, err = r.store.QueryTemporal(ctx, authorID, intent.From, intent.To, r.temporalLimit)
		if err != nil {
			return core.HybridResult{}, core.NewRetrievalError(err, "temporal lookup")
		}
	}

	seen := make(map[int64]struct{}, len(semantic)+len(temporal))
	merged := make([]core.MemoryRecord, 0, len(semantic)+len(temporal))
	for _, rec := range append(semantic[:len(semantic):len(semantic)], temporal...) {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})

	res := core.HybridResult{
		Memories:      merged,
		SemanticCount: len(semantic),
		TemporalCount: len(temporal),
	}

	log.FromCtx(ctx).Debug().
		Int("semantic", res.SemanticCount).
		Int("temporal", res.TemporalCount).
		Int("merged", len(merged)).
		Msg("hybrid retrieval done")

	return res, nil
}

// Recent returns the newest turns of an author, newest first, for the
// last-thing/last-time recall notes.
func (r *Retriever) Recent(ctx context.Context, authorID string, limit int) ([]core.MemoryRecord, error) {
	recs, err := r.store.QueryRecent(ctx, authorID, limit)
	if err != nil {
		return nil, core.NewRetrievalError(err, "recent lookup")
	}
	return recs, nil
}

// Persist stores one turn after a response has been produced.
func (r *Retriever) Persist(ctx context.Context, authorID, content string, embedding []float32) (core.MemoryRecord, error) {
	rec, err := r.store.Insert(ctx, authorID, content, embedding, time.Now().UTC())
	if err != nil {
		return core.MemoryRecord{}, core.NewRetrievalError(err, "insert memory")
	}
	return rec, nil
}
