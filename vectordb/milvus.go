package vectordb

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/schema"
)

var poiOutputFields = []string{
	"id", "name", "city", "state", "latitude", "longitude",
	"rating", "reviews_count", "price_level", "category",
	"summary", "address", "image_url", "opening_hours",
}

// MilvusStore serves hybrid POI retrieval from a Milvus collection with
// one dense and two sparse vector fields.
type MilvusStore struct {
	client     client.Client
	collection string
	dense      string
	sparse     string
	fulltext   string
}

func NewMilvusStore(ctx context.Context, cfg *config.VectorDBConfig) (*MilvusStore, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c, err := client.NewClient(ctx, client.Config{
		Address:  addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus failed, err: %w", err)
	}

	has, err := c.HasCollection(ctx, cfg.Collection)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("check collection failed, err: %w", err)
	}
	if !has {
		_ = c.Close()
		return nil, fmt.Errorf("collection %q does not exist", cfg.Collection)
	}
	if err := c.LoadCollection(ctx, cfg.Collection, false); err != nil {
		logger.Warnf("load collection %s: %v", cfg.Collection, err)
	}

	return &MilvusStore{
		client:     c,
		collection: cfg.Collection,
		dense:      cfg.DenseField,
		sparse:     cfg.SparseField,
		fulltext:   cfg.FulltextField,
	}, nil
}

// HybridSearch issues one weighted multi-modal search. Sub-requests are
// built per modality; modalities without a usable query representation
// are skipped and their weight drops out of the ranker.
func (s *MilvusStore) HybridSearch(ctx context.Context, q HybridQuery) ([]schema.POI, error) {
	if q.Limit <= 0 {
		return nil, errors.New("hybrid search limit must be positive")
	}

	var subRequests []*client.ANNSearchRequest
	var weights []float64

	if len(q.DenseVector) > 0 {
		sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
		if err != nil {
			return nil, fmt.Errorf("build dense search param failed, err: %w", err)
		}
		subRequests = append(subRequests, client.NewANNSearchRequest(
			s.dense, entity.IP, q.FilterExpr,
			[]entity.Vector{entity.FloatVector(q.DenseVector)}, sp, q.Limit))
		weights = append(weights, q.Weights.Vector)
	}

	if !q.SparseVector.IsEmpty() {
		emb, err := entity.NewSliceSparseEmbedding(q.SparseVector.Indices, q.SparseVector.Values)
		if err != nil {
			return nil, fmt.Errorf("build sparse embedding failed, err: %w", err)
		}
		sp, err := entity.NewIndexSparseInvertedSearchParam(0)
		if err != nil {
			return nil, fmt.Errorf("build sparse search param failed, err: %w", err)
		}
		subRequests = append(subRequests, client.NewANNSearchRequest(
			s.sparse, entity.IP, q.FilterExpr,
			[]entity.Vector{emb}, sp, q.Limit))
		weights = append(weights, q.Weights.Sparse)

		// The full-text field carries BM25-weighted corpus vectors in the
		// same vocabulary space, so it shares the query-side encoding.
		subRequests = append(subRequests, client.NewANNSearchRequest(
			s.fulltext, entity.IP, q.FilterExpr,
			[]entity.Vector{emb}, sp, q.Limit))
		weights = append(weights, q.Weights.Fulltext)
	}

	if len(subRequests) == 0 {
		return nil, errors.New("hybrid search has no usable query representation")
	}

	results, err := s.client.HybridSearch(ctx, s.collection, nil, q.Limit,
		poiOutputFields, client.NewWeightedReranker(weights), subRequests)
	if err != nil {
		return nil, fmt.Errorf("milvus hybrid search failed, err: %w", err)
	}

	var pois []schema.POI
	for _, res := range results {
		for i := 0; i < res.ResultCount; i++ {
			poi := poiFromRow(res.Fields, i)
			if i < len(res.Scores) {
				poi.Score = float64(res.Scores[i])
			}
			pois = append(pois, poi)
		}
	}
	return pois, nil
}

// ScanTexts pages through the collection's indexed document texts.
func (s *MilvusStore) ScanTexts(ctx context.Context, batchSize int, fn func(texts []string) error) error {
	if batchSize <= 0 {
		batchSize = 1000
	}
	itr, err := s.client.QueryIterator(ctx, client.NewQueryIteratorOption(s.collection).
		WithOutputFields("text").
		WithBatchSize(batchSize))
	if err != nil {
		return fmt.Errorf("open corpus iterator failed, err: %w", err)
	}
	for {
		rs, err := itr.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("scan corpus failed, err: %w", err)
		}
		col := rs.GetColumn("text")
		if col == nil {
			return errors.New("collection has no text field")
		}
		texts := make([]string, 0, col.Len())
		for i := 0; i < col.Len(); i++ {
			v, err := col.GetAsString(i)
			if err != nil {
				continue
			}
			texts = append(texts, v)
		}
		if err := fn(texts); err != nil {
			return err
		}
	}
}

func (s *MilvusStore) Close() error {
	return s.client.Close()
}

// poiFromRow extracts one POI from a result row, tolerating absent or
// mistyped fields.
func poiFromRow(fields client.ResultSet, i int) schema.POI {
	poi := schema.POI{
		ID:           colString(fields, "id", i),
		Name:         colString(fields, "name", i),
		City:         colString(fields, "city", i),
		State:        colString(fields, "state", i),
		Category:     colString(fields, "category", i),
		Summary:      colString(fields, "summary", i),
		Address:      colString(fields, "address", i),
		ImageURL:     colString(fields, "image_url", i),
		OpeningHours: colString(fields, "opening_hours", i),
		Rating:       colDouble(fields, "rating", i),
		ReviewsCount: int(colInt(fields, "reviews_count", i)),
		PriceLevel:   int(colInt(fields, "price_level", i)),
	}
	// zero coordinates mean the record was never geocoded
	if lat, lon := colDouble(fields, "latitude", i), colDouble(fields, "longitude", i); lat != 0 || lon != 0 {
		poi.Latitude = &lat
		poi.Longitude = &lon
	}
	return poi
}

func colString(fields client.ResultSet, name string, i int) string {
	col := fields.GetColumn(name)
	if col == nil || i >= col.Len() {
		return ""
	}
	v, err := col.GetAsString(i)
	if err != nil {
		return ""
	}
	return v
}

func colDouble(fields client.ResultSet, name string, i int) float64 {
	col := fields.GetColumn(name)
	if col == nil || i >= col.Len() {
		return 0
	}
	v, err := col.GetAsDouble(i)
	if err != nil {
		return 0
	}
	return v
}

func colInt(fields client.ResultSet, name string, i int) int64 {
	col := fields.GetColumn(name)
	if col == nil || i >= col.Len() {
		return 0
	}
	v, err := col.GetAsInt64(i)
	if err != nil {
		return 0
	}
	return v
}
