package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	generateTemperature = 0.7
	generateMaxTokens   = 1500
	probeMaxTokens      = 1
)

// geminiProvider is the primary cloud tier. It speaks the OpenAI-compatible
// chat completions surface and rotates through a key pool: quota errors (429)
// rotate immediately, any other per-attempt failure also advances, up to
// pool-size attempts per call.
type geminiProvider struct {
	baseURL string
	model   string
	pool    *KeyPool
	client  *http.Client
}

func newGeminiProvider(baseURL, model string, pool *KeyPool) *geminiProvider {
	return &geminiProvider{
		baseURL: baseURL,
		model:   model,
		pool:    pool,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	attempts := p.pool.Size()
	if attempts == 0 {
		return "", fmt.Errorf("pool de chaves vazio")
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		key, _ := p.pool.Next()

		res, err := p.complete(ctx, key, systemPrompt, userPrompt, generateMaxTokens)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if isQuotaError(err) {
			log.Printf("🔄 [LLM] Chave esgotada (429). Tentando próxima rotação...")
		} else {
			log.Printf("⚠️ [LLM] Erro no Gemini: %v", err)
		}
	}
	return "", fmt.Errorf("todas as %d chaves falharam: %w", attempts, lastErr)
}

// HealthCheck probes each key with a minimal 1-token request until one works.
func (p *geminiProvider) HealthCheck(ctx context.Context) bool {
	for _, key := range p.pool.Keys() {
		if _, err := p.complete(ctx, key, "", "ping", probeMaxTokens); err == nil {
			return true
		}
	}
	return false
}

type quotaError struct{ err error }

func (e *quotaError) Error() string { return e.err.Error() }
func (e *quotaError) Unwrap() error { return e.err }

func isQuotaError(err error) bool {
	_, ok := err.(*quotaError)
	return ok
}

func (p *geminiProvider) complete(ctx context.Context, key, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	messages := []map[string]interface{}{}
	if systemPrompt != "" {
		messages = append(messages, map[string]interface{}{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]interface{}{"role": "user", "content": userPrompt})

	requestBody := map[string]interface{}{
		"model":       p.model,
		"messages":    messages,
		"stream":      false,
		"temperature": generateTemperature,
		"max_tokens":  maxTokens,
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &quotaError{fmt.Errorf("API error (status 429): %s", string(body))}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}
	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	return apiResponse.Choices[0].Message.Content, nil
}

// EmbedContent calls the cloud embeddings endpoint with a specific key. Used
// by the memory embedder's failover path.
func (p *geminiProvider) EmbedContent(ctx context.Context, key, model, text string) ([]float32, error) {
	requestBody := map[string]interface{}{
		"model": model,
		"input": text,
	}
	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return result.Data[0].Embedding, nil
}

// CloudEmbedder exposes the gateway's cloud tier to the memory store without
// leaking provider internals.
func (g *Gateway) CloudEmbedder() (pool *KeyPool, embed func(ctx context.Context, key, text string) ([]float32, error)) {
	if g.cloud == nil {
		return NewKeyPool(nil), nil
	}
	return g.cloud.pool, func(ctx context.Context, key, text string) ([]float32, error) {
		return g.cloud.EmbedContent(ctx, key, "text-embedding-004", text)
	}
}
