package crag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/llm"
	"github.com/tripseek/tripseek/schema"
)

// GradeResult is the typed judgment of one retrieval attempt.
type GradeResult struct {
	Relevant         bool
	MustVisitCovered bool
	Reasoning        string
}

// Grader judges whether retrieved candidates answer the query and cover
// the user's mandatory stops.
type Grader interface {
	Grade(ctx context.Context, query string, candidates []schema.POI, mustVisit []string) (GradeResult, error)
}

const gradeSystemPrompt = `**IMPORTANT: You MUST respond in English only.**

You are an expert at evaluating document relevance.

**Evaluation Tasks:**
1. Relevance evaluation: if the documents contain keywords or semantic information relevant to the query, relevance is "yes", otherwise "no"
2. Must-visit coverage check: check whether the results contain POIs for the user's must-visit locations
   - If the must-visit list is empty, set must_visit_covered=true
   - If the must-visit list has entries but the results contain no related POIs, set must_visit_covered=false
   - If the must-visit locations are at least partially covered, set must_visit_covered=true

Respond with a JSON object only:
{"relevant": "yes" or "no", "must_visit_covered": true or false, "reasoning": "brief explanation"}`

// LLMGrader asks the chat model for a relevance judgment over the
// rendered candidate list.
type LLMGrader struct {
	Provider    llm.Provider
	TokenBudget int
}

func NewLLMGrader(provider llm.Provider, tokenBudget int) *LLMGrader {
	return &LLMGrader{Provider: provider, TokenBudget: tokenBudget}
}

func (g *LLMGrader) Grade(ctx context.Context, query string, candidates []schema.POI, mustVisit []string) (GradeResult, error) {
	doc := renderCandidates(candidates, 0)
	if g.TokenBudget > 0 {
		doc = llm.TruncateTokens(doc, g.TokenBudget)
	}
	mv := "(none)"
	if len(mustVisit) > 0 {
		mv = strings.Join(mustVisit, ", ")
	}
	userPrompt := fmt.Sprintf("**Retrieved Documents:**\n%s\n\n**User Query:**\n%s\n\n**User Must-Visit Locations:**\n%s", doc, query, mv)

	resp, err := g.Provider.GenerateCompletion(ctx, gradeSystemPrompt, userPrompt)
	if err != nil {
		return GradeResult{}, fmt.Errorf("grade completion failed, err: %w", err)
	}

	parsed := extractJSON(resp)
	if !parsed.Exists() {
		return GradeResult{}, fmt.Errorf("grade response is not parseable: %q", resp)
	}
	result := GradeResult{
		Relevant:         yesNo(parsed.Get("relevant")),
		MustVisitCovered: true,
		Reasoning:        parsed.Get("reasoning").String(),
	}
	if covered := parsed.Get("must_visit_covered"); covered.Exists() {
		result.MustVisitCovered = covered.Bool() || yesNo(covered)
	}
	logger.Debugf("grade: relevant=%t covered=%t reason=%s", result.Relevant, result.MustVisitCovered, result.Reasoning)
	return result, nil
}

// MapGrade folds a grade into the quality/error pair the state machine
// consumes: full pass is good; a missed mandatory stop outranks general
// irrelevance as the failure to fix first.
func MapGrade(g GradeResult, mustVisit []string) (Quality, ErrorKind) {
	if g.Relevant && g.MustVisitCovered {
		return QualityGood, ErrorNone
	}
	if !g.MustVisitCovered && len(mustVisit) > 0 {
		return QualityPoor, ErrorMissingMustVisit
	}
	return QualityPoor, ErrorIrrelevant
}

// renderCandidates formats POIs as the numbered list shown to the model.
// A non-positive limit renders everything.
func renderCandidates(pois []schema.POI, limit int) string {
	if len(pois) == 0 {
		return "(no results)"
	}
	if limit <= 0 || limit > len(pois) {
		limit = len(pois)
	}
	var b strings.Builder
	for i, p := range pois[:limit] {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
		if p.Address != "" {
			fmt.Fprintf(&b, "   Location: %s\n", p.Address)
		} else if p.City != "" {
			fmt.Fprintf(&b, "   Location: %s\n", p.City)
		}
		if p.Rating > 0 {
			fmt.Fprintf(&b, "   Rating: %.1f (%d reviews)\n", p.Rating, p.ReviewsCount)
		}
		if p.Category != "" {
			fmt.Fprintf(&b, "   Category: %s\n", p.Category)
		}
		if tag := p.PriceTag(); tag != "" {
			fmt.Fprintf(&b, "   Price: %s\n", tag)
		}
		if p.Summary != "" {
			fmt.Fprintf(&b, "   Description: %s\n", p.Summary)
		}
	}
	return b.String()
}
