// Package retrieval orchestrates one hybrid retrieval attempt: encode
// the query for each modality, over-fetch a candidate pool, filter by
// destination, optionally rerank, and shape the final topK.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/destination"
	"github.com/tripseek/tripseek/embedding"
	"github.com/tripseek/tripseek/encoder"
	"github.com/tripseek/tripseek/metrics"
	"github.com/tripseek/tripseek/post"
	"github.com/tripseek/tripseek/schema"
	"github.com/tripseek/tripseek/vectordb"
)

// Searcher runs hybrid retrieval against the shared encoder and backend.
// The encoder must be fitted on the indexed corpus before first use.
type Searcher struct {
	Encoder  *encoder.TFIDF
	Embedder embedding.Provider
	Store    vectordb.Store
	Reranker post.Reranker
}

func NewSearcher(enc *encoder.TFIDF, emb embedding.Provider, store vectordb.Store, reranker post.Reranker) *Searcher {
	return &Searcher{Encoder: enc, Embedder: emb, Store: store, Reranker: reranker}
}

// Search produces a ranked POI list for one attempt. Zero candidates is
// a meaningful empty result, not an error; backend failures propagate.
func (s *Searcher) Search(ctx context.Context, q schema.RetrievalQuery, features *schema.UserFeatures) ([]schema.POI, error) {
	mode := q.Mode.Normalize()
	weights := WeightsFor(mode)
	topK := q.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	// over-fetch to compensate for losses in filtering and reranking
	filterMultiplier := 1
	if strings.TrimSpace(q.Destination) != "" {
		filterMultiplier = 3
	}
	rerankMultiplier := 1
	useRerank := q.UseRerank && s.Reranker != nil
	if useRerank {
		rerankMultiplier = 2
	}
	poolSize := topK * filterMultiplier * rerankMultiplier

	sparse, err := s.Encoder.Encode(q.Text)
	if err != nil {
		return nil, fmt.Errorf("encode query failed, err: %w", err)
	}

	var dense []float32
	if s.Embedder != nil {
		dense, err = s.Embedder.GetEmbedding(ctx, q.Text)
		if err != nil {
			// degrade to the keyword modalities rather than failing the turn
			logger.Warnf("query embedding failed, continuing without dense modality: %v", err)
			dense = nil
		}
	}

	start := time.Now()
	pool, err := s.Store.HybridSearch(ctx, vectordb.HybridQuery{
		Text:         q.Text,
		DenseVector:  dense,
		SparseVector: sparse,
		Weights:      weights,
		Limit:        poolSize,
		FilterExpr:   vectordb.BuildFilterExpr(features),
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid search failed, err: %w", err)
	}
	metrics.ObserveSearch(string(mode), start, len(pool))
	logger.Debugf("hybrid search: mode=%s pool=%d requested=%d", mode, len(pool), poolSize)

	if len(pool) == 0 {
		return nil, nil
	}

	candidates := filterByDestination(pool, q.Destination)

	rerankScored := false
	if useRerank && len(candidates) > 1 {
		reranked, rerr := s.Reranker.Rerank(ctx, q.Text, candidates, topK)
		if rerr != nil {
			logger.Warnf("rerank failed, keeping retrieval order: %v", rerr)
		} else if len(reranked) > 0 {
			candidates = reranked
			rerankScored = true
		}
	}

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	// final scores are either rerank scores or the rank-decayed default;
	// raw backend fusion scores never leave this package
	if !rerankScored {
		post.AssignDefaultScores(candidates)
	}
	post.SynthesizeAddress(candidates)
	return candidates, nil
}

// filterByDestination keeps candidates whose city is in the resolved
// metro set. If filtering would empty a non-empty pool the filter is
// discarded: an imperfect pool beats an empty one, which would force a
// needless fallback escalation.
func filterByDestination(pool []schema.POI, dest string) []schema.POI {
	if strings.TrimSpace(dest) == "" {
		return pool
	}
	valid := destination.ResolveDestination(dest)
	if len(valid) == 0 {
		return pool
	}
	filtered := make([]schema.POI, 0, len(pool))
	for _, poi := range pool {
		if _, ok := valid[strings.ToLower(poi.City)]; ok {
			filtered = append(filtered, poi)
		}
	}
	if len(filtered) == 0 {
		metrics.IncDestinationFilter("emptied")
		logger.Warnf("destination filter %q matched no candidates, returning %d unfiltered", dest, len(pool))
		return pool
	}
	metrics.IncDestinationFilter("kept")
	logger.Debugf("destination filter %q kept %d of %d", dest, len(filtered), len(pool))
	return filtered
}
