package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

// ImageSearcher finds free images on Pixabay and returns the first hit's
// large image URL.
type ImageSearcher struct {
	apiKey string
	client *http.Client
}

func NewImageSearcher() *ImageSearcher {
	return &ImageSearcher{
		apiKey: os.Getenv("PIXABAY_API_KEY"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewImageSearchTool wraps the searcher as a registry tool.
func NewImageSearchTool(searcher *ImageSearcher) *Tool {
	return &Tool{
		Name:        "image_search",
		Description: "Busca imagens gratuitas",
		Invoke: func(ctx context.Context, args string) (string, error) {
			link := searcher.FindImage(ctx, args)
			if link == "" {
				return "❌ Não encontrei nenhuma imagem para isso.", nil
			}
			return link, nil
		},
	}
}

// FindImage returns an image URL or empty string when nothing was found.
func (s *ImageSearcher) FindImage(ctx context.Context, query string) string {
	if s.apiKey == "" {
		log.Printf("⚠️ [IMAGE-SEARCH] Chave do Pixabay não configurada.")
		return ""
	}

	reqURL := fmt.Sprintf("https://pixabay.com/api/?key=%s&q=%s&per_page=3&lang=pt",
		s.apiKey, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return ""
	}
	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("⚠️ [IMAGE-SEARCH] Erro ao buscar no Pixabay: %v", err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var data struct {
		Hits []struct {
			LargeImageURL string `json:"largeImageURL"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return ""
	}
	if len(data.Hits) == 0 {
		return ""
	}
	return data.Hits[0].LargeImageURL
}
