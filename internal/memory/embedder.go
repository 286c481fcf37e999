package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"sambot/internal/llm"
)

// EmbeddingDims is the vector width of the nomic/text-embedding-004 family.
const EmbeddingDims = 768

// Embedder turns text into a vector. Implementations must never fail the
// caller: degraded output (zero vector) is acceptable, a hard error is not.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// FailoverEmbedder is the hybrid embedding strategy:
//  1. local Ollama with a short timeout
//  2. cloud embedding API, rotating through the gateway's key pool on error
//  3. zero vector (retrieval quality degrades silently, logged)
type FailoverEmbedder struct {
	localURL   string
	localModel string
	client     *http.Client

	pool       *llm.KeyPool
	cloudEmbed func(ctx context.Context, key, text string) ([]float32, error)
}

// NewFailoverEmbedder wires the two tiers. cloudEmbed may be nil when no
// cloud keys exist.
func NewFailoverEmbedder(localURL, localModel string, pool *llm.KeyPool, cloudEmbed func(ctx context.Context, key, text string) ([]float32, error)) *FailoverEmbedder {
	return &FailoverEmbedder{
		localURL:   localURL,
		localModel: localModel,
		client:     &http.Client{Timeout: 2 * time.Second},
		pool:       pool,
		cloudEmbed: cloudEmbed,
	}
}

// Embed never fails: both tiers exhausted yields the zero vector.
func (e *FailoverEmbedder) Embed(ctx context.Context, text string) []float32 {
	if vec, err := e.embedLocal(ctx, text); err == nil {
		return vec
	}

	if vec, ok := e.embedCloud(ctx, text); ok {
		return vec
	}

	log.Printf("⚠️ [EMBED] Todos os provedores de embedding falharam, usando vetor nulo")
	return make([]float32, EmbeddingDims)
}

func (e *FailoverEmbedder) embedLocal(ctx context.Context, text string) ([]float32, error) {
	if e.localURL == "" {
		return nil, fmt.Errorf("ollama local não configurado")
	}

	requestBody := map[string]interface{}{
		"model":  e.localModel,
		"prompt": text,
	}
	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", e.localURL+"/api/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("local embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("local embedding status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("embedding vazio")
	}
	return result.Embedding, nil
}

func (e *FailoverEmbedder) embedCloud(ctx context.Context, text string) ([]float32, bool) {
	if e.cloudEmbed == nil || e.pool.Size() == 0 {
		return nil, false
	}

	attempts := e.pool.Size()
	for i := 0; i < attempts; i++ {
		key, _ := e.pool.Next()
		vec, err := e.cloudEmbed(ctx, key, text)
		if err == nil && len(vec) > 0 {
			return vec, true
		}
		log.Printf("⚠️ [EMBED] Erro na chave cloud: %v. Rotacionando...", err)
	}
	return nil, false
}
