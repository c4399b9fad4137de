package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
logging:
  level: debug
llm:
  provider: openai
  api_key: sk-test
  model: gpt-4o-mini
embedding:
  provider: openai
  api_key: sk-test
  model: text-embedding-3-small
  dimension: 1536
vectordb:
  provider: milvus
  host: localhost
  collection: florida_pois
search:
  mode: semantic
  max_retry: 3
rerank:
  enable: true
  endpoint: http://localhost:8080/rerank
session:
  store: redis
  redis:
    address: localhost:6379
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "semantic", cfg.Search.Mode)
	assert.Equal(t, 3, cfg.Search.MaxRetry)
	// defaults filled where the file is silent
	assert.Equal(t, 19530, cfg.VectorDB.Port)
	assert.Equal(t, "dense_vector", cfg.VectorDB.DenseField)
	assert.Equal(t, "sparse_vector", cfg.VectorDB.SparseField)
	assert.Equal(t, "text_sparse", cfg.VectorDB.FulltextField)
	assert.Equal(t, 100000, cfg.Encoder.MaxVocabSize)
	assert.Equal(t, 20, cfg.Search.TopKDefault)
	assert.Equal(t, 10, cfg.Search.TopKMin)
	assert.Equal(t, 50, cfg.Search.TopKMax)
	assert.Equal(t, 20, cfg.Feedback.Window)
	assert.Equal(t, 256, cfg.Cache.MaxEntries)
	assert.Equal(t, 24*3600, cfg.Session.TTLSeconds)
}

func TestValidateRejectsMissingEmbedding(t *testing.T) {
	cfg := &Config{
		VectorDB: VectorDBConfig{Provider: "milvus", Host: "localhost", Collection: "pois"},
	}
	cfg.ApplyDefaults()
	errs := cfg.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs.Error(), "embedding.provider")
}

func TestValidateRejectsUnknownVectorDB(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	cfg.VectorDB.Provider = "qdrant"
	errs := cfg.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs.Error(), "vectordb.provider")
}

func TestValidateRejectsBadSearchMode(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	cfg.Search.Mode = "fuzzy"
	errs := cfg.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs.Error(), "search.mode")
}

func TestValidateRejectsRerankWithoutEndpoint(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	cfg.Rerank.Endpoint = ""
	errs := cfg.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs.Error(), "rerank.endpoint")
}

func TestValidateRejectsRedisSessionWithoutAddress(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	cfg.Session.Redis.Address = ""
	errs := cfg.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs.Error(), "session.redis.address")
}

func TestValidateTopKBandOrdering(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	cfg.Search.TopKMin = 40
	cfg.Search.TopKDefault = 20
	errs := cfg.Validate()
	require.NotNil(t, errs)
}
