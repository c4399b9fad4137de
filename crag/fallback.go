package crag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/llm"
	"github.com/tripseek/tripseek/schema"
)

// maxFallbackPOIs caps how many already-found POIs are handed to the
// fallback generator as context.
const maxFallbackPOIs = 20

// FallbackGenerator produces a response when retrieval cannot: the index
// has no matching inventory or every refinement attempt failed.
type FallbackGenerator interface {
	Generate(ctx context.Context, query string, existing []schema.POI, features schema.UserFeatures) (string, error)
}

const fallbackSystemPrompt = `**IMPORTANT: You MUST respond in English only.**

You are a professional travel advisor. Database search encountered difficulties. Provide recommendations using the existing information and the supplied web context.

**Requirements:**
1. If existing POIs meet the needs, prioritize recommending them
2. Use the web context to supplement more attractions matching the user's preferences
3. Organize the itinerary according to the user's travel days and attractions per day
4. Consider the user's budget and transportation preferences
5. Keep the output structure consistent with the existing POI information`

// LLMFallback generates the fallback answer from existing POIs, the full
// user requirements, and optional web-search snippets.
type LLMFallback struct {
	Provider    llm.Provider
	Web         *WebSearcher
	MaxWebHits  int
	TokenBudget int
}

func NewLLMFallback(provider llm.Provider, web *WebSearcher, maxWebHits, tokenBudget int) *LLMFallback {
	return &LLMFallback{Provider: provider, Web: web, MaxWebHits: maxWebHits, TokenBudget: tokenBudget}
}

func (f *LLMFallback) Generate(ctx context.Context, query string, existing []schema.POI, features schema.UserFeatures) (string, error) {
	var b strings.Builder
	b.WriteString("**Previously Found POIs (for reference):**\n")
	b.WriteString(formatExistingPOIs(existing))
	b.WriteString("\n**User's Complete Requirements:**\n")
	if req := features.Describe(); req != "" {
		b.WriteString(req)
	} else {
		fmt.Fprintf(&b, "Query: %s\n", query)
	}
	if features.Destination == "" && query != "" {
		fmt.Fprintf(&b, "Original query: %s\n", query)
	}

	if f.Web != nil {
		hits, err := f.Web.Search(ctx, webQuery(query, features), f.MaxWebHits)
		if err != nil {
			logger.Warnf("fallback web search failed, generating without web context: %v", err)
		} else if len(hits) > 0 {
			b.WriteString("\n**Web Context:**\n")
			for _, h := range hits {
				fmt.Fprintf(&b, "- %s: %s\n", h.Title, h.Snippet)
			}
		}
	}

	userPrompt := b.String()
	if f.TokenBudget > 0 {
		userPrompt = llm.TruncateTokens(userPrompt, f.TokenBudget)
	}
	resp, err := f.Provider.GenerateCompletion(ctx, fallbackSystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("fallback completion failed, err: %w", err)
	}
	return resp, nil
}

func formatExistingPOIs(pois []schema.POI) string {
	if len(pois) == 0 {
		return "(none)\n"
	}
	if len(pois) > maxFallbackPOIs {
		pois = pois[:maxFallbackPOIs]
	}
	var b strings.Builder
	for _, p := range pois {
		fmt.Fprintf(&b, "- %s (%s): %s, Rating %.1f\n", p.Name, p.City, p.Category, p.Rating)
	}
	return b.String()
}

func webQuery(query string, features schema.UserFeatures) string {
	if features.Destination != "" {
		return fmt.Sprintf("%s attractions %s", features.Destination, query)
	}
	return query
}
