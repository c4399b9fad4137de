package crag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/llm"
	"github.com/tripseek/tripseek/schema"
)

// Refiner rewrites a failed query so the next attempt can do better.
type Refiner interface {
	Refine(ctx context.Context, originalQuery string, kind ErrorKind, features schema.UserFeatures, triedQueries []string) (string, error)
}

const refinerSystemPrompt = `**IMPORTANT: You MUST respond in English only.**

You are a query optimization expert. Generate improved queries based on search failure reasons.

**Refinement Strategies:**
1. too_few (too few results): expand search scope, add related keywords
2. semantic_drift (semantic drift): add specific qualifiers, focus on core intent
3. irrelevant (irrelevant): rebuild query based on user features
4. missing_must_visit (missing must-visit locations): add the must-visit location names to the query so search covers the user-specified attractions

**Principles:**
- Avoid repeating tried queries
- Maintain semantic consistency
- Prioritize the user's core interests

Respond with a JSON object only:
{"refined_query": "...", "modification_reason": "..."}`

// LLMRefiner asks the chat model for a rewritten query.
type LLMRefiner struct {
	Provider llm.Provider
}

func NewLLMRefiner(provider llm.Provider) *LLMRefiner {
	return &LLMRefiner{Provider: provider}
}

func (r *LLMRefiner) Refine(ctx context.Context, originalQuery string, kind ErrorKind, features schema.UserFeatures, triedQueries []string) (string, error) {
	tried := "(none)"
	if len(triedQueries) > 0 {
		tried = strings.Join(triedQueries, "; ")
	}
	userPrompt := fmt.Sprintf(`**Original query:** %s
**Failure type:** %s
**User interests:** %s
**Destination:** %s
**Must-visit locations:** %s
**Tried queries:** %s

Generate the improved query.`,
		originalQuery, kind,
		strings.Join(features.Interests, ", "),
		features.Destination,
		strings.Join(features.MustVisit, ", "),
		tried)

	resp, err := r.Provider.GenerateCompletion(ctx, refinerSystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("refine completion failed, err: %w", err)
	}

	parsed := extractJSON(resp)
	refined := strings.TrimSpace(parsed.Get("refined_query").String())
	if refined == "" {
		return "", fmt.Errorf("refine response had no refined_query: %q", resp)
	}
	logger.Infof("refined query %q -> %q (%s)", originalQuery, refined, parsed.Get("modification_reason").String())
	return refined, nil
}
