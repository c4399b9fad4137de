// Package agent drives one conversational turn end to end: retrieve
// candidates, grade them, and correct course by refining the query or
// falling back to generative recommendations when retrieval cannot be
// salvaged within the retry budget.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripseek/tripseek/cache"
	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/crag"
	"github.com/tripseek/tripseek/feedback"
	"github.com/tripseek/tripseek/geocode"
	"github.com/tripseek/tripseek/llm"
	"github.com/tripseek/tripseek/metrics"
	"github.com/tripseek/tripseek/progress"
	"github.com/tripseek/tripseek/retrieval"
	"github.com/tripseek/tripseek/schema"
)

const fallbackApology = "I couldn't find reliable recommendations for this request right now. " +
	"Please try rephrasing your question or asking about a different destination."

// Retriever runs one hybrid retrieval attempt. *retrieval.Searcher is
// the production implementation.
type Retriever interface {
	Search(ctx context.Context, q schema.RetrievalQuery, features *schema.UserFeatures) ([]schema.POI, error)
}

// Agent wires the retrieval loop collaborators for one engine instance.
type Agent struct {
	Searcher Retriever
	Grader   crag.Grader
	Refiner  crag.Refiner
	Fallback crag.FallbackGenerator
	LLM      llm.Provider
	Feedback *feedback.Tracker
	Cache    *cache.AnswerCache
	Geocoder *geocode.Geocoder

	SearchCfg config.SearchConfig
	// RerankDefault applies when a request leaves UseRerank unset.
	RerankDefault bool
	// TokenBudget caps prompt size for answer generation.
	TokenBudget int
}

// TurnRequest is one user question plus the trip context to answer it with.
type TurnRequest struct {
	Query    string
	Features *schema.UserFeatures
	Mode     schema.SearchMode
	TopK     int
	// UseRerank overrides the engine default when set; nil means "use
	// the configured default", so an explicit false can disable a
	// rerank the config enables.
	UseRerank *bool
	SkipCache bool
	Progress  *progress.Emitter
}

// TurnResult is the answer for one turn.
type TurnResult struct {
	Response     string
	POIs         []schema.POI
	Attempts     int
	FinalQuery   string
	FallbackUsed bool
	FromCache    bool
}

// RunTurn executes the corrective loop for one request. It always
// produces a response: irrecoverable failures end in an apology, not
// an error, so conversational callers never see a dead turn.
func (a *Agent) RunTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return TurnResult{}, fmt.Errorf("empty query")
	}
	features := req.Features
	if features == nil {
		features = &schema.UserFeatures{}
	}
	mode := req.Mode.Normalize()

	key := cache.Key(query, mode, features.Destination)
	if a.Cache != nil && !req.SkipCache {
		if ans, ok := a.Cache.Get(key); ok {
			logger.Debugf("answer cache hit for %q", query)
			return TurnResult{
				Response:     ans.Response,
				POIs:         ans.POIs,
				FallbackUsed: ans.FallbackUsed,
				FinalQuery:   query,
				FromCache:    true,
			}, nil
		}
	}

	topK := req.TopK
	if topK <= 0 {
		topK = retrieval.DynamicTopK(features.TravelDays, features.PoisPerDay,
			a.SearchCfg.TopKDefault, a.SearchCfg.TopKMin, a.SearchCfg.TopKMax)
	}
	if a.Feedback != nil {
		topK = a.Feedback.SuggestTopK(string(mode), topK)
	}

	useRerank := a.RerankDefault
	if req.UseRerank != nil {
		useRerank = *req.UseRerank
	}

	state := crag.NewCorrectionState(query, a.SearchCfg.MaxRetry)
	current := query
	var pois []schema.POI

	for {
		attempt := state.RetryCount
		req.Progress.Emit(progress.StageSearching, attempt, fmt.Sprintf("mode=%s topK=%d", mode, topK))

		found, err := a.Searcher.Search(ctx, schema.RetrievalQuery{
			Text:        current,
			Destination: features.Destination,
			Mode:        mode,
			TopK:        topK,
			UseRerank:   useRerank,
		}, features)
		if err != nil {
			// backend down: go straight to generative fallback
			logger.Warnf("retrieval attempt %d failed: %v", attempt, err)
			state.MarkFallback()
			return a.finishWithFallback(ctx, req, state, current, key, pois, *features)
		}
		pois = found

		outcome := a.gradeAttempt(ctx, req, state, current, pois, features)
		if a.Feedback != nil {
			a.Feedback.Record(string(mode), outcome.Quality, outcome.ErrorKind, topK)
		}
		metrics.IncGrade(outcome.Quality.String())

		action := crag.Decide(state, outcome)
		switch action {
		case crag.ActionAccept:
			metrics.IncAction("accept")
			return a.finishWithAccept(ctx, req, state, current, key, pois, *features)

		case crag.ActionFallback:
			metrics.IncAction("fallback")
			state.MarkFallback()
			return a.finishWithFallback(ctx, req, state, current, key, pois, *features)

		case crag.ActionRefine:
			metrics.IncAction("refine")
			req.Progress.Emit(progress.StageRefining, attempt, outcome.ErrorKind.String())
			refined, rerr := a.Refiner.Refine(ctx, query, outcome.ErrorKind, *features, state.TriedQueries)
			if rerr != nil || strings.TrimSpace(refined) == "" || state.Tried(refined) {
				if rerr != nil {
					logger.Warnf("query refinement failed: %v", rerr)
				} else {
					logger.Debugf("refiner repeated a tried query, escalating")
				}
				state.MarkFallback()
				return a.finishWithFallback(ctx, req, state, current, key, pois, *features)
			}
			state.RecordRetry(refined)
			current = refined
			logger.Infof("retrying with refined query %q (attempt %d/%d)", refined, state.RetryCount, state.MaxRetry)
		}
	}
}

// gradeAttempt evaluates one retrieval pool. Grader failures map to
// QualityUnknown so the decision layer escalates instead of silently
// accepting an unvetted pool.
func (a *Agent) gradeAttempt(ctx context.Context, req TurnRequest, state *crag.CorrectionState,
	query string, pois []schema.POI, features *schema.UserFeatures) crag.Outcome {

	outcome := crag.Outcome{ResultCount: len(pois), SearchExecuted: true}
	if len(pois) == 0 {
		outcome.Quality = crag.QualityPoor
		outcome.ErrorKind = crag.ErrorNotFound
		return outcome
	}

	req.Progress.Emit(progress.StageGrading, state.RetryCount, fmt.Sprintf("%d candidates", len(pois)))
	if a.Grader == nil {
		outcome.Quality = crag.QualityGood
		return outcome
	}
	grade, err := a.Grader.Grade(ctx, query, pois, features.MustVisit)
	if err != nil {
		logger.Warnf("grading failed, treating pool quality as unknown: %v", err)
		outcome.Quality = crag.QualityUnknown
		return outcome
	}
	outcome.Quality, outcome.ErrorKind = crag.MapGrade(grade, features.MustVisit)
	return outcome
}

func (a *Agent) finishWithAccept(ctx context.Context, req TurnRequest, state *crag.CorrectionState,
	finalQuery, cacheKey string, pois []schema.POI, features schema.UserFeatures) (TurnResult, error) {

	if a.Geocoder != nil {
		a.Geocoder.Backfill(ctx, pois)
	}
	req.Progress.Emit(progress.StageGenerating, state.RetryCount, fmt.Sprintf("%d accepted", len(pois)))
	response := a.respond(ctx, finalQuery, pois, features)
	req.Progress.Emit(progress.StageDone, state.RetryCount, "")

	result := TurnResult{
		Response:   response,
		POIs:       pois,
		Attempts:   state.RetryCount + 1,
		FinalQuery: finalQuery,
	}
	a.storeAnswer(cacheKey, result)
	return result, nil
}

func (a *Agent) finishWithFallback(ctx context.Context, req TurnRequest, state *crag.CorrectionState,
	finalQuery, cacheKey string, pois []schema.POI, features schema.UserFeatures) (TurnResult, error) {

	req.Progress.Emit(progress.StageFallback, state.RetryCount, fmt.Sprintf("%d partial candidates", len(pois)))
	result := TurnResult{
		POIs:         pois,
		Attempts:     state.RetryCount + 1,
		FinalQuery:   finalQuery,
		FallbackUsed: true,
	}
	if a.Fallback == nil {
		result.Response = fallbackApology
		req.Progress.Emit(progress.StageDone, state.RetryCount, "")
		return result, nil
	}
	text, err := a.Fallback.Generate(ctx, finalQuery, pois, features)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logger.Errorf("fallback generation failed: %v", err)
		}
		result.Response = fallbackApology
		req.Progress.Emit(progress.StageDone, state.RetryCount, "")
		return result, nil
	}
	result.Response = text
	req.Progress.Emit(progress.StageDone, state.RetryCount, "")
	a.storeAnswer(cacheKey, result)
	return result, nil
}

func (a *Agent) storeAnswer(key string, result TurnResult) {
	if a.Cache == nil || key == "" {
		return
	}
	a.Cache.Set(key, cache.Answer{
		Response:     result.Response,
		POIs:         result.POIs,
		FallbackUsed: result.FallbackUsed,
	})
}
