package post

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripseek/tripseek/schema"
)

func candidates() []schema.POI {
	return []schema.POI{
		{ID: "a", Name: "South Beach", City: "Miami Beach", Summary: "sand and surf"},
		{ID: "b", Name: "Vizcaya Museum", City: "Miami", Summary: "historic villa"},
		{ID: "c", Name: "Wynwood Walls", City: "Miami", Summary: "street art"},
	}
}

func TestModelRerankerReorders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req modelRerankReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Documents, 3)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"index": 2, "relevance_score": 0.9},
				{"index": 0, "relevance_score": 0.5},
				{"index": 1, "relevance_score": 0.1},
			},
		})
	}))
	defer srv.Close()

	m := NewModelReranker(srv.URL, "bge-reranker-large", "", nil)
	out, err := m.Rerank(context.Background(), "street art tour", candidates(), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "c", out[0].ID)
	assert.InDelta(t, 0.9, out[0].Score, 1e-9)
	assert.Equal(t, "a", out[1].ID)
}

func TestModelRerankerPassthroughOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewModelReranker(srv.URL, "", "", nil)
	in := candidates()
	in[0].Score, in[1].Score, in[2].Score = 42.5, 41.5, 40.5
	out, err := m.Rerank(context.Background(), "q", in, 0)
	require.NoError(t, err)
	require.Len(t, out, 3)
	// order preserved, backend-scale scores replaced by rank defaults
	assert.Equal(t, "a", out[0].ID)
	assert.InDelta(t, 1.0, out[0].Score, 1e-9)
	assert.InDelta(t, 0.5, out[1].Score, 1e-9)
	assert.InDelta(t, 1.0/3, out[2].Score, 1e-9)
}

func TestModelRerankerNoEndpoint(t *testing.T) {
	m := NewModelReranker("", "", "", nil)
	out, err := m.Rerank(context.Background(), "q", candidates(), 2)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.InDelta(t, 1.0, out[0].Score, 1e-9)
}

func TestAssignDefaultScoresOverwritesBackendScale(t *testing.T) {
	in := candidates()
	in[0].Score, in[1].Score, in[2].Score = 42.5, 41.5, 40.5
	AssignDefaultScores(in)
	assert.InDelta(t, 1.0, in[0].Score, 1e-9)
	assert.InDelta(t, 0.5, in[1].Score, 1e-9)
	assert.InDelta(t, 1.0/3, in[2].Score, 1e-9)
}

func TestTrimSummary(t *testing.T) {
	assert.Equal(t, "short", TrimSummary("short", 10))
	long := "a scenic boardwalk with ocean views and plenty of cafes"
	got := TrimSummary(long, 30)
	assert.LessOrEqual(t, len(got), 34)
	assert.Contains(t, got, "...")
}

func TestSynthesizeAddress(t *testing.T) {
	pois := []schema.POI{
		{Name: "x", City: "Miami", State: "FL"},
		{Name: "y", Address: "1 Ocean Dr"},
		{Name: "z", City: "Tampa"},
	}
	SynthesizeAddress(pois)
	assert.Equal(t, "Miami, FL", pois[0].Address)
	assert.Equal(t, "1 Ocean Dr", pois[1].Address)
	assert.Equal(t, "Tampa", pois[2].Address)
}
