// Package post holds the post-retrieval stages: cross-encoder reranking
// and result shaping. Reranking is best-effort; every failure path keeps
// the pre-rerank order so retrieval never fails because a reranker did.
package post

import (
	"context"
	"fmt"
	"sort"

	"github.com/tripseek/tripseek/common/httpx"
	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/schema"
)

// Reranker reorders POI candidates by relevance to the query.
type Reranker interface {
	Rerank(ctx context.Context, query string, in []schema.POI, topN int) ([]schema.POI, error)
}

// ModelReranker calls a dedicated cross-encoder reranking service
// (BGE-reranker, Cohere-style API): documents in, indexed relevance
// scores out.
type ModelReranker struct {
	Endpoint string
	Model    string
	APIKey   string
	Client   *httpx.Client
}

type modelRerankReq struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model,omitempty"`
	TopN      int      `json:"top_n,omitempty"`
}

type modelRerankResp struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
		Document       string  `json:"document,omitempty"`
	} `json:"results"`
}

func NewModelReranker(endpoint, model, apiKey string, client *httpx.Client) *ModelReranker {
	return &ModelReranker{Endpoint: endpoint, Model: model, APIKey: apiKey, Client: client}
}

func (m *ModelReranker) Rerank(ctx context.Context, query string, in []schema.POI, topN int) ([]schema.POI, error) {
	if m.Endpoint == "" || len(in) < 2 {
		return degrade(in, topN), nil
	}

	documents := make([]string, len(in))
	for i, poi := range in {
		documents[i] = poi.DocumentText()
	}

	headers := map[string]string{}
	if m.APIKey != "" {
		headers["Authorization"] = fmt.Sprintf("Bearer %s", m.APIKey)
	}
	if m.Client == nil {
		m.Client = httpx.NewFromConfig(nil)
	}

	var resp modelRerankResp
	err := m.Client.PostJSON(ctx, m.Endpoint, headers, modelRerankReq{
		Query:     query,
		Documents: documents,
		Model:     m.Model,
		TopN:      topN,
	}, &resp)
	if err != nil {
		logger.Warnf("rerank request failed, keeping original order: %v", err)
		return degrade(in, topN), nil
	}
	if len(resp.Results) == 0 {
		logger.Warnf("rerank returned no results, keeping original order")
		return degrade(in, topN), nil
	}

	out := make([]schema.POI, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Index >= 0 && r.Index < len(in) {
			poi := in[r.Index]
			poi.Score = r.RelevanceScore
			out = append(out, poi)
		}
	}
	if len(out) == 0 {
		logger.Warnf("rerank results referenced no known candidates, keeping original order")
		return degrade(in, topN), nil
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return truncate(out, topN), nil
}

func truncate(in []schema.POI, topN int) []schema.POI {
	if topN > 0 && len(in) > topN {
		return append([]schema.POI(nil), in[:topN]...)
	}
	return in
}

// degrade keeps the pre-rerank order but moves scores onto the default
// rank-decayed scale, matching the contract that results carry either a
// model score or 1/(rank+1).
func degrade(in []schema.POI, topN int) []schema.POI {
	out := truncate(in, topN)
	AssignDefaultScores(out)
	return out
}

// AssignDefaultScores overwrites scores with the rank-decayed default
// 1/(rank+1). Backend fusion scores are not comparable across modes or
// weight tuples, so a pool the reranker never scored always leaves on
// this scale instead.
func AssignDefaultScores(in []schema.POI) {
	for i := range in {
		in[i].Score = 1.0 / float64(i+1)
	}
}
