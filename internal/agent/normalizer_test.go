package agent

import "testing"

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"slang expansion", "vc sabe o preco?", "voce sabe o preco?"},
		{"accent folding", "previsão do tempo", "previsao do tempo"},
		{"duplicate words", "clima clima em Lisboa", "clima em lisboa"},
		{"duplicate words repeated", "oi oi oi tudo bem", "oi tudo bem"},
		{"duplicate words mixed case", "Clima clima em Lisboa", "clima em lisboa"},
		{"emoji removal", "clima em Lisboa 😀", "clima em lisboa"},
		{"lowercase and trim", "  OLÁ Mundo  ", "ola mundo"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIdentifyIntents(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name       string
		in         string
		wantIntent string
		wantQuery  string
	}{
		{"weather", "clima em Lisboa", "clima", "lisboa"},
		{"weather rain", "vai chover em Recife?", "clima", "recife"},
		{"game price", "quanto custa Elden Ring?", "jogos", "elden ring"},
		{"search who", "quem é Alan Turing", "busca", "alan turing"},
		{"chitchat", "bom dia, tudo bem?", "conversa", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Identify(tt.in)
			if got.Name != tt.wantIntent {
				t.Errorf("intent = %q, want %q", got.Name, tt.wantIntent)
			}
			if got.Query != tt.wantQuery {
				t.Errorf("query = %q, want %q", got.Query, tt.wantQuery)
			}
		})
	}
}

func TestIdentifyShortSearchTermRejected(t *testing.T) {
	n := NewNormalizer()
	got := n.Identify("quem e ab")
	if got.Name == "busca" {
		t.Error("search terms under 3 chars must not match the busca intent")
	}
}
