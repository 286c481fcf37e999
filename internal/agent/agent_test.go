package agent

import (
	"context"
	"strings"
	"sync"

	"sambot/internal/models"
)

// fakeGenerator scripts Generate responses in order and records prompts.
type fakeGenerator struct {
	mu         sync.Mutex
	responses  []string
	calls      int
	sysPrompts []string
	prompts    []string
	summary    string
	summaryErr error
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sysPrompts = append(f.sysPrompts, systemPrompt)
	f.prompts = append(f.prompts, userPrompt)
	resp := ""
	if f.calls < len(f.responses) {
		resp = f.responses[f.calls]
	} else if len(f.responses) > 0 {
		resp = f.responses[len(f.responses)-1]
	}
	f.calls++
	return resp
}

func (f *fakeGenerator) GenerateSummary(ctx context.Context, text string) (string, error) {
	if f.summaryErr != nil {
		return "", f.summaryErr
	}
	return f.summary, nil
}

// fakeStore records Add calls and returns canned Query results.
type fakeStore struct {
	mu      sync.Mutex
	added   []addedMemory
	results map[string][]string
	addErr  error
}

type addedMemory struct {
	collection string
	text       string
	metadata   map[string]string
	id         string
}

func (f *fakeStore) Add(ctx context.Context, collection, text string, metadata map[string]string, id string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, addedMemory{collection, text, metadata, id})
	return nil
}

func (f *fakeStore) Query(ctx context.Context, collection, query string, topK int) ([]string, error) {
	if f.results == nil {
		return nil, nil
	}
	res := f.results[collection]
	if len(res) > topK {
		res = res[:topK]
	}
	return res, nil
}

// fakeConversation captures delivered chunks; History can be scripted to
// panic to exercise the recovery path.
type fakeConversation struct {
	mu           sync.Mutex
	replies      []string
	sends        []string
	reactions    []string
	history      []models.HistoryEntry
	historyPanic bool
}

func (f *fakeConversation) History(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if f.historyPanic {
		panic("history backend unavailable")
	}
	return f.history, nil
}

func (f *fakeConversation) Reply(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeConversation) Send(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, text)
	return nil
}

func (f *fakeConversation) React(ctx context.Context, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, emoji)
	return nil
}

func countContaining(haystack []string, needle string) int {
	n := 0
	for _, s := range haystack {
		if strings.Contains(s, needle) {
			n++
		}
	}
	return n
}
