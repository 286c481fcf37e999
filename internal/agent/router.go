package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"sambot/internal/metrics"
	"sambot/internal/models"
	"sambot/internal/tools"
)

const (
	routerMaxAttempts  = 3
	routerSystemPrompt = "Responda APENAS JSON válido. Sem markdown, sem explicações."
)

// Router asks the LLM which tools a message needs, executes them and
// aggregates the labelled results for the system prompt.
type Router struct {
	llm      Generator
	registry *tools.Registry
}

func NewRouter(llm Generator, registry *tools.Registry) *Router {
	return &Router{llm: llm, registry: registry}
}

// Route returns the aggregated tool context block, or empty when no tool is
// needed or the model never produced valid JSON.
func (r *Router) Route(ctx context.Context, content string) string {
	if r.registry.Count() == 0 {
		return ""
	}

	basePrompt := fmt.Sprintf(
		"Analise a solicitação e responda APENAS um JSON (Lista de Objetos).\n"+
			"Ferramentas disponíveis: %s.\n"+
			"Retorne uma lista vazia [] se nenhuma ferramenta for necessária.\n"+
			`Exemplo Multi-Tool: [{"tool": "weather", "args": "São Paulo"}, {"tool": "game_search", "args": "Elden Ring"}]`+"\n"+
			"Usuário: %s",
		r.toolList(), content)

	lastError := ""

	for attempt := 0; attempt < routerMaxAttempts; attempt++ {
		prompt := basePrompt
		if attempt > 0 {
			prompt += fmt.Sprintf("\n\n[ERRO ANTERIOR]: O JSON gerado era inválido (%s). Corrija a sintaxe estritamente.", lastError)
		}

		raw := r.llm.Generate(ctx, routerSystemPrompt, prompt)

		jsonStr := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "```json", ""), "```", ""))
		if jsonStr == "" {
			return ""
		}

		calls, err := parseToolCalls(jsonStr)
		if err != nil {
			log.Printf("⚠️ [ROUTER] JSON inválido na tentativa %d: %v", attempt+1, err)
			lastError = err.Error()
			continue
		}

		return r.execute(ctx, calls)
	}

	return ""
}

// parseToolCalls accepts either a list of calls or a single bare object.
func parseToolCalls(jsonStr string) ([]models.ToolCall, error) {
	var calls []models.ToolCall
	if err := json.Unmarshal([]byte(jsonStr), &calls); err == nil {
		return calls, nil
	}

	var single models.ToolCall
	if err := json.Unmarshal([]byte(jsonStr), &single); err != nil {
		return nil, err
	}
	return []models.ToolCall{single}, nil
}

func (r *Router) execute(ctx context.Context, calls []models.ToolCall) string {
	var results []string

	for _, call := range calls {
		if call.Tool == "" || call.Tool == "none" {
			continue
		}
		if _, ok := r.registry.Get(call.Tool); !ok {
			continue
		}

		log.Printf("🛠️ [ROUTER] Executando tool: %s | Args: %s", call.Tool, call.Args)

		res, err := r.registry.Invoke(ctx, call.Tool, call.Args)
		label := strings.ToUpper(call.Tool)
		if err != nil {
			log.Printf("❌ [ROUTER] Erro na execução da tool %s: %v", call.Tool, err)
			metrics.Get().RecordToolInvocation(call.Tool, false)
			results = append(results, fmt.Sprintf("\n[ERRO %s]: Falha ao executar.", label))
			continue
		}
		metrics.Get().RecordToolInvocation(call.Tool, true)
		results = append(results, fmt.Sprintf("\n[RESULTADO %s]:\n%s", label, res))
	}

	if len(results) == 0 {
		return ""
	}
	return strings.Join(results, "\n") + "\n"
}

func (r *Router) toolList() string {
	names := r.registry.Names()
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "'" + name + "'"
	}
	return strings.Join(quoted, ", ")
}
