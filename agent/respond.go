package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/llm"
	"github.com/tripseek/tripseek/schema"
)

const respondSystemPrompt = `**IMPORTANT: You MUST respond in English only.**

You are a professional travel advisor. Answer the user's question using ONLY the verified places listed below.

Guidelines:
1. Recommend the places most relevant to the question, with a short reason for each.
2. Mention city, price level, and rating when available.
3. If trip length is given, organize recommendations into a day-by-day plan with a sensible geographic grouping.
4. Keep the answer concise and well structured. Do not invent places that are not in the list.`

// respond turns an accepted candidate pool into the user-facing
// answer. Generation failures degrade to a plain formatted list so an
// accepted pool is never thrown away over a flaky completion call.
func (a *Agent) respond(ctx context.Context, query string, pois []schema.POI, features schema.UserFeatures) string {
	if a.LLM == nil {
		return formatPlainAnswer(pois)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	if desc := features.Describe(); desc != "" {
		fmt.Fprintf(&b, "Trip requirements:\n%s\n", desc)
	}
	b.WriteString("Verified places:\n")
	for i, p := range pois {
		fmt.Fprintf(&b, "%d. %s", i+1, p.Name)
		if p.City != "" {
			fmt.Fprintf(&b, " (%s)", p.City)
		}
		if p.Category != "" {
			fmt.Fprintf(&b, " - %s", p.Category)
		}
		if p.Rating > 0 {
			fmt.Fprintf(&b, ", rating %.1f", p.Rating)
		}
		if tag := p.PriceTag(); tag != "" {
			fmt.Fprintf(&b, ", %s", tag)
		}
		if p.Summary != "" {
			fmt.Fprintf(&b, "\n   %s", p.Summary)
		}
		b.WriteString("\n")
	}

	userPrompt := llm.TruncateTokens(b.String(), a.contextBudget())
	answer, err := a.LLM.GenerateCompletion(ctx, respondSystemPrompt, userPrompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			logger.Warnf("answer generation failed, using formatted list: %v", err)
		}
		return formatPlainAnswer(pois)
	}
	return answer
}

func (a *Agent) contextBudget() int {
	if a.TokenBudget > 0 {
		return a.TokenBudget
	}
	return 6000
}

func formatPlainAnswer(pois []schema.POI) string {
	if len(pois) == 0 {
		return fallbackApology
	}
	var b strings.Builder
	b.WriteString("Here are the places I found:\n")
	for i, p := range pois {
		fmt.Fprintf(&b, "%d. %s", i+1, p.Name)
		details := make([]string, 0, 3)
		if p.Address != "" {
			details = append(details, p.Address)
		}
		if p.Rating > 0 {
			details = append(details, fmt.Sprintf("rating %.1f", p.Rating))
		}
		if tag := p.PriceTag(); tag != "" {
			details = append(details, tag)
		}
		if len(details) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
