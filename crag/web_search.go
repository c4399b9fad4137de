package crag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tripseek/tripseek/common/httpx"
	"github.com/tripseek/tripseek/common/logger"
)

// WebSearcher fetches external knowledge snippets that feed fallback
// generation when the POI index comes up short.
type WebSearcher struct {
	Provider string // "duckduckgo" (default) or "bing"
	Endpoint string
	APIKey   string
	Client   *httpx.Client
}

// WebSearchResult is a single hit with title, URL and snippet.
type WebSearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Search runs a web search and returns at most numResults hits.
func (w *WebSearcher) Search(ctx context.Context, query string, numResults int) ([]WebSearchResult, error) {
	if numResults <= 0 {
		numResults = 3
	}

	var results []WebSearchResult
	var err error
	switch w.Provider {
	case "bing":
		results, err = w.searchBing(ctx, query, numResults)
	case "duckduckgo", "":
		results, err = w.searchDuckDuckGo(ctx, query, numResults)
	default:
		logger.Warnf("web search: unknown provider %s, using duckduckgo", w.Provider)
		results, err = w.searchDuckDuckGo(ctx, query, numResults)
	}
	if err != nil {
		return nil, fmt.Errorf("web search failed, err: %w", err)
	}
	return results, nil
}

// searchDuckDuckGo uses the DuckDuckGo Instant Answer API.
func (w *WebSearcher) searchDuckDuckGo(ctx context.Context, query string, numResults int) ([]WebSearchResult, error) {
	endpoint := "https://api.duckduckgo.com/"
	if w.Endpoint != "" {
		endpoint = w.Endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "tripseek/1.0")

	if w.Client == nil {
		w.Client = httpx.NewFromConfig(nil)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("duckduckgo api returned status %d", resp.StatusCode)
	}

	var ddgResp struct {
		AbstractText   string `json:"AbstractText"`
		AbstractSource string `json:"AbstractSource"`
		AbstractURL    string `json:"AbstractURL"`
		RelatedTopics  []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ddgResp); err != nil {
		return nil, err
	}

	results := make([]WebSearchResult, 0, numResults)
	if ddgResp.AbstractText != "" {
		results = append(results, WebSearchResult{
			Title:   ddgResp.AbstractSource,
			URL:     ddgResp.AbstractURL,
			Snippet: ddgResp.AbstractText,
		})
	}
	for _, topic := range ddgResp.RelatedTopics {
		if len(results) >= numResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		title := topic.Text
		if len(title) > 100 {
			title = title[:100]
		}
		results = append(results, WebSearchResult{Title: title, URL: topic.FirstURL, Snippet: topic.Text})
	}

	logger.Debugf("web search: duckduckgo returned %d results for %q", len(results), query)
	return results, nil
}

// searchBing uses the Bing Web Search API v7.
func (w *WebSearcher) searchBing(ctx context.Context, query string, numResults int) ([]WebSearchResult, error) {
	if w.Endpoint == "" {
		return nil, fmt.Errorf("bing search requires endpoint configuration")
	}
	if w.APIKey == "" {
		return nil, fmt.Errorf("bing search requires api key")
	}

	u, err := url.Parse(w.Endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", numResults))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", w.APIKey)

	if w.Client == nil {
		w.Client = httpx.NewFromConfig(nil)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bing api returned status %d", resp.StatusCode)
	}

	var bingResp struct {
		WebPages struct {
			Value []struct {
				Name    string `json:"name"`
				URL     string `json:"url"`
				Snippet string `json:"snippet"`
			} `json:"value"`
		} `json:"webPages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bingResp); err != nil {
		return nil, err
	}

	results := make([]WebSearchResult, 0, len(bingResp.WebPages.Value))
	for _, v := range bingResp.WebPages.Value {
		results = append(results, WebSearchResult{Title: v.Name, URL: v.URL, Snippet: v.Snippet})
	}
	logger.Debugf("web search: bing returned %d results for %q", len(results), query)
	return results, nil
}
