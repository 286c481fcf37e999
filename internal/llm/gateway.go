package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"sambot/internal/config"
	"sambot/internal/metrics"
)

// OfflineSentinel is the fixed user-facing message returned when every tier of
// the cascade fails. Callers must treat it as "no good answer" and keep going.
const OfflineSentinel = "🤯 *Meus sistemas de pensamento estão offline. Verifique minha conexão ou chaves de API.*"

const summarySystemPrompt = "Você é um assistente técnico. Resuma o texto a seguir de forma extremamente concisa."

// tierProvider is one fallback tier of the cascade.
type tierProvider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Gateway cascades text generation across provider tiers in strict priority
// order: Gemini (key-rotating cloud pool) -> remote Ollama -> local Ollama.
type Gateway struct {
	tiers []tierProvider
	cloud *geminiProvider // kept for health checks and embeddings
	local *ollamaProvider
}

// NewGateway builds the cascade from configuration. Tiers without
// configuration (no keys, no remote URL) are simply absent from the cascade.
func NewGateway(cfg *config.Config) *Gateway {
	g := &Gateway{}

	cloud := newGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiModel, NewKeyPool(cfg.GeminiKeys))
	g.cloud = cloud
	if cloud.pool.Size() > 0 {
		g.tiers = append(g.tiers, cloud)
	} else {
		log.Println("⚠️ [LLM] Nenhuma chave Gemini configurada, tier cloud desativado")
	}

	if cfg.OllamaRemoteURL != "" {
		g.tiers = append(g.tiers, newOllamaProvider("remote", cfg.OllamaRemoteURL, cfg.OllamaRemoteModel, "[☁️] ", 60*time.Second))
	}

	local := newOllamaProvider("local", cfg.OllamaLocalURL, cfg.OllamaLocalModel, "[📟] ", 120*time.Second)
	local.embedModel = cfg.EmbedModel
	g.local = local
	g.tiers = append(g.tiers, local)

	log.Printf("🧠 [LLM] Gateway pronto: %d tiers, %d chaves cloud", len(g.tiers), cloud.pool.Size())
	return g
}

// Generate runs the full cascade. It never returns an error: total exhaustion
// yields the fixed offline sentinel so the pipeline degrades instead of
// crashing.
func (g *Gateway) Generate(ctx context.Context, systemPrompt, userPrompt string) string {
	for i, tier := range g.tiers {
		res, err := tier.Generate(ctx, systemPrompt, userPrompt)
		if err == nil && res != "" {
			return res
		}
		log.Printf("⚠️ [LLM] Tier %s falhou: %v", tier.Name(), err)
		if i < len(g.tiers)-1 {
			if m := metrics.Get(); m != nil {
				m.RecordGatewayFallback(g.tiers[i+1].Name())
			}
		}
	}
	return OfflineSentinel
}

// GenerateSummary condenses text through the same cascade.
func (g *Gateway) GenerateSummary(ctx context.Context, text string) (string, error) {
	res := g.Generate(ctx, summarySystemPrompt, text)
	if res == OfflineSentinel {
		return "", fmt.Errorf("todos os provedores offline")
	}
	return res, nil
}

// Embed produces a vector via the local Ollama embedding model. The memory
// store wraps this with its own cloud failover; see memory.Embedder.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.local == nil {
		return nil, fmt.Errorf("tier local indisponível")
	}
	return g.local.Embed(ctx, text)
}

// HealthCheck reports whether any cloud key can complete a minimal 1-token
// probe.
func (g *Gateway) HealthCheck(ctx context.Context) bool {
	if g.cloud == nil {
		return false
	}
	return g.cloud.HealthCheck(ctx)
}
