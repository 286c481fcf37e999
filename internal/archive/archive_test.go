package archive

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("archive init: %v", err)
	}
	return a
}

func TestNewCreatesFolderLayout(t *testing.T) {
	dir := t.TempDir()
	if _, err := New(dir); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, sub := range []string{"Config", "Prompts", "Knowledge", "Persistence"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Errorf("folder %s missing: %v", sub, err)
		}
	}
}

func TestGetPromptFallbackChain(t *testing.T) {
	a := newTestArchive(t)

	if got := a.GetPrompt("inexistente"); got != defaultPrompt {
		t.Errorf("missing persona must fall back to the default prompt, got %q", got)
	}
	if got := a.GetPrompt(""); got != defaultPrompt {
		t.Errorf("empty persona must behave like 'padrao', got %q", got)
	}

	padrao := filepath.Join(a.folders["prompts"], "padrao.txt")
	if err := os.WriteFile(padrao, []byte("Você é a Sam.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := a.GetPrompt("inexistente"); got != "Você é a Sam." {
		t.Errorf("missing persona must fall back to padrao's file, got %q", got)
	}
}

func TestGetPromptCachesUntilInvalidate(t *testing.T) {
	a := newTestArchive(t)
	path := filepath.Join(a.folders["prompts"], "gamer.txt")

	if err := os.WriteFile(path, []byte("prompt v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := a.GetPrompt("gamer"); got != "prompt v1" {
		t.Fatalf("expected v1, got %q", got)
	}

	if err := os.WriteFile(path, []byte("prompt v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := a.GetPrompt("gamer"); got != "prompt v1" {
		t.Errorf("cached prompt expected before invalidation, got %q", got)
	}

	a.InvalidateAll()
	if got := a.GetPrompt("gamer"); got != "prompt v2" {
		t.Errorf("expected fresh read after invalidation, got %q", got)
	}
}

func TestChannelPersonaBindings(t *testing.T) {
	a := newTestArchive(t)

	if err := a.SetChannelPersona("c1", "gamer"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := a.SetChannelPersona("c2", "padrao"); err != nil {
		t.Fatalf("bind: %v", err)
	}

	channels := a.LoadActiveChannels()
	if channels["c1"] != "gamer" || channels["c2"] != "padrao" {
		t.Errorf("unexpected bindings: %v", channels)
	}

	if err := a.ClearChannelPersona("c1"); err != nil {
		t.Fatalf("unbind: %v", err)
	}

	// Fresh instance reads the persisted file, not the cache.
	b, err := New(a.root)
	if err != nil {
		t.Fatal(err)
	}
	persisted := b.LoadActiveChannels()
	if _, ok := persisted["c1"]; ok {
		t.Error("cleared binding must not survive on disk")
	}
	if persisted["c2"] != "padrao" {
		t.Errorf("remaining binding lost: %v", persisted)
	}
}

func TestMusicPreferences(t *testing.T) {
	a := newTestArchive(t)

	if got := a.GetUserMusicContext("42"); got != "" {
		t.Errorf("expected empty context for unknown user, got %q", got)
	}

	if err := a.SaveMusicPreference("42", "rock progressivo"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.SaveMusicPreference("42", "rock progressivo"); err != nil {
		t.Fatalf("duplicate save: %v", err)
	}
	if err := a.SaveMusicPreference("42", "mpb"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := a.GetUserMusicContext("42")
	want := "O utilizador gosta de: rock progressivo, mpb."
	if got != want {
		t.Errorf("context = %q, want %q", got, want)
	}
}

func TestGetIdentityDefault(t *testing.T) {
	a := newTestArchive(t)
	if got := a.GetIdentity(); got.Name != "SamBot" {
		t.Errorf("missing identity file must default the name, got %q", got.Name)
	}
}
