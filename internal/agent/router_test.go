package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sambot/internal/tools"
)

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	reg.Register(&tools.Tool{
		Name: "weather",
		Invoke: func(ctx context.Context, args string) (string, error) {
			return "Sol em " + args, nil
		},
	})
	reg.Register(&tools.Tool{
		Name: "game_search",
		Invoke: func(ctx context.Context, args string) (string, error) {
			return "", errors.New("api fora do ar")
		},
	})
	return reg
}

func TestRouteSingleTool(t *testing.T) {
	llm := &fakeGenerator{responses: []string{`[{"tool": "weather", "args": "Lisboa"}]`}}
	r := NewRouter(llm, newTestRegistry(t))

	got := r.Route(context.Background(), "como está o clima em Lisboa?")
	if !strings.Contains(got, "[RESULTADO WEATHER]:") {
		t.Errorf("expected labelled result, got %q", got)
	}
	if !strings.Contains(got, "Sol em Lisboa") {
		t.Errorf("expected tool output in block, got %q", got)
	}
}

func TestRouteBareObjectAndFences(t *testing.T) {
	llm := &fakeGenerator{responses: []string{
		"```json\n{\"tool\": \"weather\", \"args\": \"Porto\"}\n```",
	}}
	r := NewRouter(llm, newTestRegistry(t))

	got := r.Route(context.Background(), "clima no porto")
	if !strings.Contains(got, "Sol em Porto") {
		t.Errorf("fenced bare object must still route, got %q", got)
	}
}

func TestRouteToolFailureLabelled(t *testing.T) {
	llm := &fakeGenerator{responses: []string{`[{"tool": "game_search", "args": "Elden Ring"}]`}}
	r := NewRouter(llm, newTestRegistry(t))

	got := r.Route(context.Background(), "preço do elden ring")
	if !strings.Contains(got, "[ERRO GAME_SEARCH]: Falha ao executar.") {
		t.Errorf("expected failure label, got %q", got)
	}
}

func TestRouteSkipsUnknownAndNone(t *testing.T) {
	llm := &fakeGenerator{responses: []string{
		`[{"tool": "none", "args": ""}, {"tool": "teleport", "args": "marte"}]`,
	}}
	r := NewRouter(llm, newTestRegistry(t))

	if got := r.Route(context.Background(), "oi"); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestRouteRetriesOnInvalidJSON(t *testing.T) {
	llm := &fakeGenerator{responses: []string{
		"isso não é json",
		`{"tool": "weather", "args": "Recife"`,
		`[{"tool": "weather", "args": "Recife"}]`,
	}}
	r := NewRouter(llm, newTestRegistry(t))

	got := r.Route(context.Background(), "clima em recife")
	if !strings.Contains(got, "Sol em Recife") {
		t.Errorf("third attempt should succeed, got %q", got)
	}
	if llm.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", llm.calls)
	}
	if !strings.Contains(llm.prompts[1], "[ERRO ANTERIOR]") {
		t.Error("retry prompt must carry the previous error")
	}
	if strings.Contains(llm.prompts[0], "[ERRO ANTERIOR]") {
		t.Error("first attempt must not carry an error note")
	}
}

func TestRouteGivesUpAfterThreeAttempts(t *testing.T) {
	llm := &fakeGenerator{responses: []string{"nunca json válido"}}
	r := NewRouter(llm, newTestRegistry(t))

	if got := r.Route(context.Background(), "clima"); got != "" {
		t.Errorf("expected empty result after exhaustion, got %q", got)
	}
	if llm.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", llm.calls)
	}
}

func TestRouteEmptyResponseStops(t *testing.T) {
	llm := &fakeGenerator{responses: []string{""}}
	r := NewRouter(llm, newTestRegistry(t))

	if got := r.Route(context.Background(), "oi"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
	if llm.calls != 1 {
		t.Errorf("empty model output must stop routing, got %d calls", llm.calls)
	}
}
