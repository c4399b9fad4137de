// Package tripseek assembles the corrective retrieval engine: a TF-IDF
// sparse encoder fitted on the indexed corpus, a Milvus hybrid search
// backend, and an LLM-driven grade/refine/fallback loop, exposed over
// MCP tools.
package tripseek

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tripseek/tripseek/agent"
	"github.com/tripseek/tripseek/cache"
	"github.com/tripseek/tripseek/common/httpx"
	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/crag"
	"github.com/tripseek/tripseek/embedding"
	"github.com/tripseek/tripseek/encoder"
	"github.com/tripseek/tripseek/feedback"
	"github.com/tripseek/tripseek/geocode"
	"github.com/tripseek/tripseek/llm"
	"github.com/tripseek/tripseek/post"
	"github.com/tripseek/tripseek/retrieval"
	"github.com/tripseek/tripseek/schema"
	"github.com/tripseek/tripseek/vectordb"
)

// TripClient owns every collaborator of one engine instance.
type TripClient struct {
	cfg      *config.Config
	store    vectordb.Store
	encoder  *encoder.TFIDF
	embedder embedding.Provider
	llm      llm.Provider
	agent    *agent.Agent
	sessions SessionStore
}

// NewTripClient builds the engine from configuration. The sparse
// encoder is fitted by scanning the corpus texts once at startup, so
// construction needs a reachable vector store.
func NewTripClient(ctx context.Context, cfg *config.Config) (*TripClient, error) {
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	c := &TripClient{cfg: cfg}

	store, err := vectordb.NewStore(ctx, &cfg.VectorDB)
	if err != nil {
		return nil, fmt.Errorf("create vector store failed, err: %w", err)
	}
	c.store = store

	enc, err := fitEncoder(ctx, store, cfg.Encoder)
	if err != nil {
		return nil, fmt.Errorf("fit sparse encoder failed, err: %w", err)
	}
	c.encoder = enc

	embedder, err := embedding.NewProvider(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider failed, err: %w", err)
	}
	c.embedder = embedder

	if cfg.LLM.Provider != "" || cfg.LLM.APIKey != "" {
		provider, err := llm.NewProvider(&cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("create llm provider failed, err: %w", err)
		}
		c.llm = provider
	}

	httpClient := httpx.NewFromConfig(cfg.HTTP)

	var reranker post.Reranker
	if cfg.Rerank.Enable {
		reranker = &post.ModelReranker{
			Endpoint: cfg.Rerank.Endpoint,
			Model:    cfg.Rerank.Model,
			APIKey:   cfg.Rerank.APIKey,
			Client:   httpClient,
		}
	}

	var (
		grader   crag.Grader
		refiner  crag.Refiner
		fallback crag.FallbackGenerator
	)
	if c.llm != nil {
		grader = crag.NewLLMGrader(c.llm, cfg.LLM.ContextTokenBudget)
		refiner = crag.NewLLMRefiner(c.llm)
		var web *crag.WebSearcher
		if cfg.WebSearch.Enable {
			web = &crag.WebSearcher{
				Provider: cfg.WebSearch.Provider,
				Endpoint: cfg.WebSearch.Endpoint,
				Client:   httpClient,
			}
		}
		fallback = crag.NewLLMFallback(c.llm, web, cfg.WebSearch.MaxHits, cfg.LLM.ContextTokenBudget)
	}

	var geocoder *geocode.Geocoder
	if cfg.Geocode.Enable {
		geocoder = geocode.New(cfg.Geocode, httpClient)
	}

	var answers *cache.AnswerCache
	if cfg.Cache != nil && cfg.Cache.Enable {
		answers = cache.NewAnswerCache(cfg.Cache)
	}

	sessions, err := NewSessionStore(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("create session store failed, err: %w", err)
	}
	c.sessions = sessions

	c.agent = &agent.Agent{
		Searcher:      retrieval.NewSearcher(enc, embedder, store, reranker),
		Grader:        grader,
		Refiner:       refiner,
		Fallback:      fallback,
		LLM:           c.llm,
		Feedback:      feedback.NewTracker(cfg.Feedback),
		Cache:         answers,
		Geocoder:      geocoder,
		SearchCfg:     cfg.Search,
		RerankDefault: cfg.Rerank.Enable,
		TokenBudget:   cfg.LLM.ContextTokenBudget,
	}

	logger.Infof("tripseek client ready: collection=%s vocab=%d llm=%t rerank=%t",
		cfg.VectorDB.Collection, enc.VocabSize(), c.llm != nil, reranker != nil)
	return c, nil
}

// fitEncoder streams every corpus document text through a TF-IDF fit.
func fitEncoder(ctx context.Context, store vectordb.Store, cfg config.EncoderConfig) (*encoder.TFIDF, error) {
	start := time.Now()
	var docs []string
	err := store.ScanTexts(ctx, cfg.ScanBatchSize, func(batch []string) error {
		docs = append(docs, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("corpus scan returned no documents")
	}
	enc := encoder.NewTFIDF(cfg.MaxVocabSize).Fit(docs)
	logger.Infof("sparse encoder fitted: docs=%d vocab=%d took=%s", len(docs), enc.VocabSize(), time.Since(start))
	return enc, nil
}

// SearchPOIs runs one corrective retrieval turn. A nil UseRerank keeps
// the configured rerank default.
func (c *TripClient) SearchPOIs(ctx context.Context, req agent.TurnRequest) (agent.TurnResult, error) {
	if req.Mode == "" {
		req.Mode = schema.SearchMode(c.cfg.Search.Mode)
	}
	return c.agent.RunTurn(ctx, req)
}

// PlanTrip answers with a day-by-day plan built from an accepted pool.
func (c *TripClient) PlanTrip(ctx context.Context, query string, features *schema.UserFeatures) (agent.TurnResult, error) {
	if features == nil {
		features = &schema.UserFeatures{}
	}
	if features.TravelDays <= 0 {
		features.TravelDays = 3
	}
	return c.SearchPOIs(ctx, agent.TurnRequest{Query: query, Features: features})
}

// Sessions exposes the session store for the MCP layer.
func (c *TripClient) Sessions() SessionStore { return c.sessions }

// RecordTurn appends a user/assistant exchange to a session and keeps
// the latest trip features for follow-up turns.
func (c *TripClient) RecordTurn(ctx context.Context, sessionID, userText, assistantText string, features *schema.UserFeatures) {
	if strings.TrimSpace(sessionID) == "" {
		return
	}
	now := time.Now()
	c.sessions.AddMessage(ctx, sessionID, ChatMessage{Role: "user", Content: userText, Timestamp: now})
	c.sessions.AddMessage(ctx, sessionID, ChatMessage{Role: "assistant", Content: assistantText, Timestamp: now})
	if features != nil {
		c.sessions.RememberFeatures(ctx, sessionID, features)
	}
}

// Close releases backend connections.
func (c *TripClient) Close() error {
	var firstErr error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			firstErr = err
		}
	}
	if closer, ok := c.sessions.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
