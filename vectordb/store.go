// Package vectordb fronts the multi-modal POI search backend. The
// orchestrator only sees the Store interface; the Milvus implementation
// fuses three retrieval signals server-side with a weighted ranker.
package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/schema"
)

// Weights distributes relevance across the three retrieval modalities.
// A valid tuple sums to 1.0.
type Weights struct {
	Vector   float64 `json:"vector"`
	Sparse   float64 `json:"sparse"`
	Fulltext float64 `json:"fulltext"`
}

// HybridQuery is one multi-modal retrieval request.
type HybridQuery struct {
	// Text is the raw query, retained for backends that rank raw text
	// natively. The Milvus implementation instead matches the fulltext
	// field with SparseVector, since its hybrid search only accepts
	// vector sub-requests and the BM25 field shares the encoder
	// vocabulary.
	Text string
	// DenseVector is the embedded query for the vector modality.
	DenseVector []float32
	// SparseVector is the TF-IDF encoding for the sparse modality.
	SparseVector schema.SparseVector
	Weights      Weights
	Limit        int
	// FilterExpr optionally restricts candidates (price tiers etc.).
	FilterExpr string
}

// Store is the search backend contract. HybridSearch returns an empty
// slice, not an error, when nothing matches.
type Store interface {
	HybridSearch(ctx context.Context, q HybridQuery) ([]schema.POI, error)
	// ScanTexts streams indexed document texts in batches, used to fit
	// the sparse encoder on the exact corpus the backend serves.
	ScanTexts(ctx context.Context, batchSize int, fn func(texts []string) error) error
	Close() error
}

// NewStore constructs a Store from config.
func NewStore(ctx context.Context, cfg *config.VectorDBConfig) (Store, error) {
	switch strings.ToLower(cfg.Provider) {
	case "milvus":
		return NewMilvusStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported vectordb provider: %s", cfg.Provider)
	}
}

// BuildFilterExpr derives a backend filter expression from user features.
// Only the meal budget maps to an indexable field today: the budget
// selects a two-tier band on the 1..4 price level scale.
func BuildFilterExpr(features *schema.UserFeatures) string {
	if features == nil || features.MealBudget <= 0 {
		return ""
	}
	budget := features.MealBudget
	switch {
	case budget <= 20:
		return "price_level <= 1"
	case budget <= 50:
		return "price_level <= 2"
	case budget <= 100:
		return "price_level >= 2 && price_level <= 3"
	default:
		return "price_level >= 3"
	}
}
