package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sambot/internal/models"
)

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) GenerateSummary(ctx context.Context, text string) (string, error) {
	f.calls++
	return f.summary, f.err
}

type fakeMemory struct {
	collection string
	text       string
	metadata   map[string]string
	adds       int
}

func (f *fakeMemory) Add(ctx context.Context, collection, text string, metadata map[string]string, id string) error {
	f.adds++
	f.collection = collection
	f.text = text
	f.metadata = metadata
	return nil
}

type fakePrefs struct {
	saved map[string]string
}

func (f *fakePrefs) SaveMusicPreference(userID, tags string) error {
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[userID] = tags
	return nil
}

func TestParsePreferenceLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantID   string
		wantTags string
		wantOK   bool
	}{
		{"id with suffix", "123456789/nome: rock, musicas calmas", "123456789", "rock, musicas calmas", true},
		{"plain id", "42: mpb e bossa nova", "42", "mpb e bossa nova", true},
		{"no digits", "usuario: gosta de rock", "", "", false},
		{"no colon", "apenas um fato solto", "", "", false},
		{"empty tags", "99:   ", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, tags, ok := parsePreferenceLine(tt.line)
			if ok != tt.wantOK || id != tt.wantID || tags != tt.wantTags {
				t.Errorf("parsePreferenceLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.line, id, tags, ok, tt.wantID, tt.wantTags, tt.wantOK)
			}
		})
	}
}

func TestRunMaintenanceEmptyBufferSkips(t *testing.T) {
	llm := &fakeSummarizer{summary: "qualquer coisa"}
	nc := NewNightCycle(llm, &fakeMemory{}, &fakePrefs{}, NewLogBuffer())

	nc.RunMaintenance(context.Background())

	if llm.calls != 0 {
		t.Errorf("empty buffer must not call the summarizer, got %d calls", llm.calls)
	}
}

func TestRunMaintenanceSplitsPreferencesAndSummary(t *testing.T) {
	llm := &fakeSummarizer{summary: "123/ana: rock progressivo\n- Ana mora em Lisboa e trabalha com design\n- O grupo falou sobre um torneio de xadrez"}
	mem := &fakeMemory{}
	prefs := &fakePrefs{}
	buffer := NewLogBuffer()
	buffer.Record("ana: eu amo rock progressivo")
	buffer.Record("bot: que legal!")

	nc := NewNightCycle(llm, mem, prefs, buffer)
	nc.RunMaintenance(context.Background())

	if got := prefs.saved["123"]; got != "rock progressivo" {
		t.Errorf("expected music preference saved, got %v", prefs.saved)
	}
	if mem.adds != 1 {
		t.Fatalf("expected 1 memory write, got %d", mem.adds)
	}
	if mem.collection != models.CollectionDailySummaries {
		t.Errorf("wrong collection: %q", mem.collection)
	}
	if strings.Contains(mem.text, "rock progressivo") {
		t.Error("preference lines must not leak into the daily summary")
	}
	if !strings.Contains(mem.text, "torneio de xadrez") {
		t.Errorf("summary lines missing: %q", mem.text)
	}
	if mem.metadata["type"] != "night_summary" || mem.metadata["context_length"] != "2" {
		t.Errorf("wrong metadata: %v", mem.metadata)
	}
	if buffer.Len() != 0 {
		t.Error("buffer must be drained")
	}
}

func TestRunMaintenanceSummarizerFailure(t *testing.T) {
	llm := &fakeSummarizer{err: errors.New("todos os tiers offline")}
	mem := &fakeMemory{}
	buffer := NewLogBuffer()
	buffer.Record("ana: oi")

	nc := NewNightCycle(llm, mem, &fakePrefs{}, buffer)
	nc.RunMaintenance(context.Background())

	if mem.adds != 0 {
		t.Error("failed summaries must not be indexed")
	}
}

func TestRunMaintenanceShortSummaryDiscarded(t *testing.T) {
	llm := &fakeSummarizer{summary: "- ok"}
	mem := &fakeMemory{}
	buffer := NewLogBuffer()
	buffer.Record("ana: oi")

	nc := NewNightCycle(llm, mem, &fakePrefs{}, buffer)
	nc.RunMaintenance(context.Background())

	if mem.adds != 0 {
		t.Error("summaries of 15 chars or fewer must be discarded")
	}
}
