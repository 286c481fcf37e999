package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// WebSearcher runs the search cascade: Google Custom Search -> Brave ->
// DuckDuckGo Instant Answers. Each engine that is unconfigured or fails is
// skipped silently.
type WebSearcher struct {
	googleKey string
	googleCX  string
	braveKey  string
	client    *http.Client
}

// NewWebSearcher reads engine credentials from the environment.
func NewWebSearcher() *WebSearcher {
	return &WebSearcher{
		googleKey: os.Getenv("GOOGLE_SEARCH_API_KEY"),
		googleCX:  os.Getenv("GOOGLE_SEARCH_CX"),
		braveKey:  os.Getenv("BRAVE_SEARCH_API_KEY"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWebSearchTool wraps the cascade as a registry tool.
func NewWebSearchTool(searcher *WebSearcher) *Tool {
	return &Tool{
		Name:        "web_search",
		Description: "Pesquisa na web (Google/Brave/DuckDuckGo)",
		Invoke: func(ctx context.Context, args string) (string, error) {
			return searcher.Search(ctx, args), nil
		},
	}
}

// Search runs the cascade and always returns text, a "no results" line at
// worst.
func (w *WebSearcher) Search(ctx context.Context, query string) string {
	if res, err := w.googleSearch(ctx, query); err == nil && res != "" {
		return res
	}
	if res, err := w.braveSearch(ctx, query); err == nil && res != "" {
		return res
	}
	if res, err := w.duckDuckGoFallback(ctx, query); err == nil && res != "" {
		return res
	}
	return "❌ Nenhum resultado encontrado nas fontes de busca."
}

func (w *WebSearcher) googleSearch(ctx context.Context, query string) (string, error) {
	if w.googleKey == "" || w.googleCX == "" {
		return "", fmt.Errorf("chaves Google ausentes")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", w.googleKey)
	params.Set("cx", w.googleCX)
	params.Set("num", "3")

	req, err := http.NewRequestWithContext(ctx, "GET", "https://www.googleapis.com/customsearch/v1?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google status %d", resp.StatusCode)
	}

	var data struct {
		Items []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if len(data.Items) == 0 {
		return "", fmt.Errorf("sem resultados")
	}

	text := "🔎 Resultados Google:\n"
	for _, item := range data.Items {
		text += fmt.Sprintf("- %s: %s (%s)\n", item.Title, item.Snippet, item.Link)
	}
	return text, nil
}

func (w *WebSearcher) braveSearch(ctx context.Context, query string) (string, error) {
	if w.braveKey == "" {
		return "", fmt.Errorf("chave Brave ausente")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", "3")

	req, err := http.NewRequestWithContext(ctx, "GET", "https://api.search.brave.com/res/v1/web/search?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", w.braveKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("brave status %d", resp.StatusCode)
	}

	var data struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				URL         string `json:"url"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if len(data.Web.Results) == 0 {
		return "", fmt.Errorf("sem resultados")
	}

	text := "🦁 Resultados Brave:\n"
	for _, r := range data.Web.Results {
		text += fmt.Sprintf("- %s: %s (%s)\n", r.Title, r.Description, r.URL)
	}
	return text, nil
}

// duckDuckGoFallback hits the free Instant Answer API. It often returns
// nothing for complex queries; last resort only.
func (w *WebSearcher) duckDuckGoFallback(ctx context.Context, query string) (string, error) {
	reqURL := "https://api.duckduckgo.com/?q=" + url.QueryEscape(query) + "&format=json"
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("duckduckgo status %d", resp.StatusCode)
	}

	var data struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			Text string `json:"Text"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}

	if data.AbstractText != "" {
		return fmt.Sprintf("🦆 Resumo DuckDuckGo (%s):\n%s\nFonte: %s", data.Heading, data.AbstractText, data.AbstractURL), nil
	}

	if len(data.RelatedTopics) > 0 {
		text := fmt.Sprintf("🦆 Tópicos DuckDuckGo sobre '%s':\n", query)
		max := 3
		if len(data.RelatedTopics) < max {
			max = len(data.RelatedTopics)
		}
		for i := 0; i < max; i++ {
			if data.RelatedTopics[i].Text != "" {
				text += "- " + data.RelatedTopics[i].Text + "\n"
			}
		}
		return text, nil
	}

	return "", fmt.Errorf("sem resultados")
}
