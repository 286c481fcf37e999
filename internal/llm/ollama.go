package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ollamaProvider is a self-hosted fallback tier (remote GPU box or local CPU).
// Successful replies carry the tier's prefix so users can tell which brain
// answered.
type ollamaProvider struct {
	name       string
	endpoint   string
	model      string
	embedModel string
	prefix     string
	client     *http.Client
}

func newOllamaProvider(name, endpoint, model, prefix string, timeout time.Duration) *ollamaProvider {
	return &ollamaProvider{
		name:     name,
		endpoint: endpoint,
		model:    model,
		prefix:   prefix,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *ollamaProvider) Name() string { return "ollama-" + p.name }

func (p *ollamaProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if p.model == "" {
		return "", fmt.Errorf("modelo não configurado")
	}

	requestBody := map[string]interface{}{
		"model":  p.model,
		"stream": false,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.endpoint+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Message.Content == "" {
		return "", fmt.Errorf("resposta vazia")
	}
	return p.prefix + result.Message.Content, nil
}

// Embed generates an embedding via /api/embeddings.
func (p *ollamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	requestBody := map[string]interface{}{
		"model":  p.embedModel,
		"prompt": text,
	}
	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.endpoint+"/api/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Embedding, nil
}
