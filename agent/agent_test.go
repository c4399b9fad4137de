package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripseek/tripseek/cache"
	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/crag"
	"github.com/tripseek/tripseek/progress"
	"github.com/tripseek/tripseek/schema"
)

type scriptedRetriever struct {
	pools   [][]schema.POI
	errs    []error
	queries []string
	reranks []bool
	calls   int
}

func (s *scriptedRetriever) Search(_ context.Context, q schema.RetrievalQuery, _ *schema.UserFeatures) ([]schema.POI, error) {
	i := s.calls
	s.calls++
	s.queries = append(s.queries, q.Text)
	s.reranks = append(s.reranks, q.UseRerank)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.pools) {
		return s.pools[i], nil
	}
	return nil, nil
}

type scriptedGrader struct {
	grades []crag.GradeResult
	errs   []error
	calls  int
}

func (s *scriptedGrader) Grade(_ context.Context, _ string, _ []schema.POI, _ []string) (crag.GradeResult, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return crag.GradeResult{}, s.errs[i]
	}
	if i < len(s.grades) {
		return s.grades[i], nil
	}
	return crag.GradeResult{Relevant: true, MustVisitCovered: true}, nil
}

type scriptedRefiner struct {
	queries []string
	err     error
	calls   int
}

func (s *scriptedRefiner) Refine(_ context.Context, _ string, _ crag.ErrorKind, _ schema.UserFeatures, _ []string) (string, error) {
	i := s.calls
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if i < len(s.queries) {
		return s.queries[i], nil
	}
	return "", errors.New("no more refinements scripted")
}

type stubFallback struct {
	text  string
	err   error
	calls int
}

func (s *stubFallback) Generate(_ context.Context, _ string, _ []schema.POI, _ schema.UserFeatures) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) GenerateCompletion(_ context.Context, _, _ string) (string, error) {
	return s.text, s.err
}

func searchCfg() config.SearchConfig {
	return config.SearchConfig{TopKDefault: 20, TopKMin: 10, TopKMax: 50, MaxRetry: 2}
}

func miamiPool(n int) []schema.POI {
	pois := make([]schema.POI, 0, n)
	cities := []string{"Miami", "Miami Beach", "Coral Gables"}
	for i := 0; i < n; i++ {
		pois = append(pois, schema.POI{
			ID:   string(rune('a' + i)),
			Name: "Spot " + string(rune('A'+i)),
			City: cities[i%len(cities)], State: "FL", Rating: 4.5,
		})
	}
	return pois
}

func TestAcceptOnFirstGoodAttempt(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{miamiPool(5)}}
	a := &Agent{
		Searcher:  retr,
		Grader:    &scriptedGrader{grades: []crag.GradeResult{{Relevant: true, MustVisitCovered: true}}},
		LLM:       &stubLLM{text: "Enjoy South Beach and Wynwood."},
		SearchCfg: searchCfg(),
	}
	res, err := a.RunTurn(context.Background(), TurnRequest{Query: "beach weekend in miami"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.FallbackUsed)
	assert.Equal(t, "Enjoy South Beach and Wynwood.", res.Response)
	assert.Len(t, res.POIs, 5)
}

func TestRefineThenAccept(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{miamiPool(3), miamiPool(6)}}
	grader := &scriptedGrader{grades: []crag.GradeResult{
		{Relevant: false, MustVisitCovered: true},
		{Relevant: true, MustVisitCovered: true},
	}}
	refiner := &scriptedRefiner{queries: []string{"top rated miami beaches and attractions"}}
	a := &Agent{Searcher: retr, Grader: grader, Refiner: refiner, LLM: &stubLLM{text: "ok"}, SearchCfg: searchCfg()}

	res, err := a.RunTurn(context.Background(), TurnRequest{Query: "miami stuff"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.False(t, res.FallbackUsed)
	assert.Equal(t, "top rated miami beaches and attractions", res.FinalQuery)
	require.Len(t, retr.queries, 2)
	assert.Equal(t, "miami stuff", retr.queries[0])
}

func TestZeroResultsEscalatesWithoutBurningRetries(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{nil}}
	grader := &scriptedGrader{}
	fb := &stubFallback{text: "Consider visiting in season."}
	a := &Agent{Searcher: retr, Grader: grader, Fallback: fb, SearchCfg: searchCfg()}

	res, err := a.RunTurn(context.Background(), TurnRequest{Query: "underwater opera in kansas"})
	require.NoError(t, err)
	assert.True(t, res.FallbackUsed)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, fb.calls)
	assert.Equal(t, 0, grader.calls, "an empty pool is never sent to the grader")
}

func TestExhaustedRetriesFallBack(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{miamiPool(3), miamiPool(3), miamiPool(3)}}
	grader := &scriptedGrader{grades: []crag.GradeResult{
		{Relevant: false}, {Relevant: false}, {Relevant: false},
	}}
	refiner := &scriptedRefiner{queries: []string{"try two", "try three"}}
	fb := &stubFallback{text: "Here is a curated plan instead."}
	a := &Agent{Searcher: retr, Grader: grader, Refiner: refiner, Fallback: fb, SearchCfg: searchCfg()}

	res, err := a.RunTurn(context.Background(), TurnRequest{Query: "try one"})
	require.NoError(t, err)
	assert.True(t, res.FallbackUsed)
	assert.Equal(t, 3, res.Attempts, "initial attempt plus maxRetry refinements")
	assert.Equal(t, "Here is a curated plan instead.", res.Response)
}

func TestGraderFailureRoutesToFallback(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{miamiPool(4)}}
	grader := &scriptedGrader{errs: []error{errors.New("llm timeout")}}
	fb := &stubFallback{text: "fallback answer"}
	a := &Agent{Searcher: retr, Grader: grader, Fallback: fb, SearchCfg: searchCfg()}

	res, err := a.RunTurn(context.Background(), TurnRequest{Query: "miami food"})
	require.NoError(t, err)
	assert.True(t, res.FallbackUsed, "unknown pool quality must not be silently accepted")
	assert.Equal(t, "fallback answer", res.Response)
}

func TestRefinerRepeatingTriedQueryEscalates(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{miamiPool(3)}}
	grader := &scriptedGrader{grades: []crag.GradeResult{{Relevant: false}}}
	refiner := &scriptedRefiner{queries: []string{"miami stuff"}} // same as original
	fb := &stubFallback{text: "degraded answer"}
	a := &Agent{Searcher: retr, Grader: grader, Refiner: refiner, Fallback: fb, SearchCfg: searchCfg()}

	res, err := a.RunTurn(context.Background(), TurnRequest{Query: "miami stuff"})
	require.NoError(t, err)
	assert.True(t, res.FallbackUsed)
	assert.Equal(t, 1, retr.calls, "a repeated refinement must not trigger another search")
}

func TestFallbackFailureYieldsApology(t *testing.T) {
	retr := &scriptedRetriever{errs: []error{errors.New("milvus down")}}
	fb := &stubFallback{err: errors.New("llm down")}
	a := &Agent{Searcher: retr, Fallback: fb, SearchCfg: searchCfg()}

	res, err := a.RunTurn(context.Background(), TurnRequest{Query: "anything"})
	require.NoError(t, err)
	assert.True(t, res.FallbackUsed)
	assert.Contains(t, res.Response, "try rephrasing")
}

func TestEmptyQueryRejected(t *testing.T) {
	a := &Agent{Searcher: &scriptedRetriever{}, SearchCfg: searchCfg()}
	_, err := a.RunTurn(context.Background(), TurnRequest{Query: "   "})
	require.Error(t, err)
}

func TestAnswerCacheSkipsLoop(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{miamiPool(2)}}
	a := &Agent{
		Searcher:  retr,
		LLM:       &stubLLM{text: "first answer"},
		Cache:     cache.NewAnswerCache(&config.CacheConfig{MaxEntries: 8, TTLSeconds: 300}),
		SearchCfg: searchCfg(),
	}

	first, err := a.RunTurn(context.Background(), TurnRequest{Query: "Beach Day in MIAMI"})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := a.RunTurn(context.Background(), TurnRequest{Query: "beach day in miami"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Response, second.Response)
	assert.Equal(t, 1, retr.calls)

	third, err := a.RunTurn(context.Background(), TurnRequest{Query: "beach day in miami", SkipCache: true})
	require.NoError(t, err)
	assert.False(t, third.FromCache)
	assert.Equal(t, 2, retr.calls)
}

func TestRerankOverrideBeatsEngineDefault(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{miamiPool(2), miamiPool(2), miamiPool(2)}}
	a := &Agent{Searcher: retr, LLM: &stubLLM{text: "ok"}, RerankDefault: true, SearchCfg: searchCfg()}

	_, err := a.RunTurn(context.Background(), TurnRequest{Query: "miami museums"})
	require.NoError(t, err)

	off := false
	_, err = a.RunTurn(context.Background(), TurnRequest{Query: "miami beaches", UseRerank: &off})
	require.NoError(t, err)

	on := true
	a.RerankDefault = false
	_, err = a.RunTurn(context.Background(), TurnRequest{Query: "miami food", UseRerank: &on})
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false, true}, retr.reranks,
		"unset keeps the default; an explicit value wins either way")
}

func TestProgressEventsCoverTheLoop(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{miamiPool(3), miamiPool(4)}}
	grader := &scriptedGrader{grades: []crag.GradeResult{
		{Relevant: false}, {Relevant: true, MustVisitCovered: true},
	}}
	refiner := &scriptedRefiner{queries: []string{"better query"}}
	a := &Agent{Searcher: retr, Grader: grader, Refiner: refiner, LLM: &stubLLM{text: "ok"}, SearchCfg: searchCfg()}

	emitter := progress.NewEmitter(32)
	_, err := a.RunTurn(context.Background(), TurnRequest{Query: "miami", Progress: emitter})
	require.NoError(t, err)
	emitter.Close()

	seen := map[progress.Stage]bool{}
	for ev := range emitter.Events() {
		seen[ev.Stage] = true
	}
	for _, want := range []progress.Stage{progress.StageSearching, progress.StageGrading, progress.StageRefining, progress.StageGenerating, progress.StageDone} {
		assert.True(t, seen[want], "missing stage %s", want)
	}
}

func TestPlainAnswerWithoutLLM(t *testing.T) {
	retr := &scriptedRetriever{pools: [][]schema.POI{{
		{ID: "1", Name: "Vizcaya Museum", Address: "Miami, FL", Rating: 4.7, PriceLevel: 2},
	}}}
	a := &Agent{Searcher: retr, SearchCfg: searchCfg()}

	res, err := a.RunTurn(context.Background(), TurnRequest{Query: "museums in miami"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(res.Response, "Vizcaya Museum"))
	assert.True(t, strings.Contains(res.Response, "rating 4.7"))
	assert.True(t, strings.Contains(res.Response, "$$"))
}
