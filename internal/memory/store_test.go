package memory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"sambot/internal/models"
)

// keywordEmbedder maps each known keyword to its own axis so similarity in
// tests is fully predictable.
type keywordEmbedder struct {
	axes map[string]int
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	axes := make(map[string]int, len(keywords))
	for i, k := range keywords {
		axes[k] = i
	}
	return &keywordEmbedder{axes: axes}
}

func (e *keywordEmbedder) Embed(ctx context.Context, text string) []float32 {
	vec := make([]float32, EmbeddingDims)
	for word, axis := range e.axes {
		if strings.Contains(strings.ToLower(text), word) {
			vec[axis] = 1
		}
	}
	return vec
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "memoria.db"), newKeywordEmbedder("pizza", "rock", "lisboa"))
	if err != nil {
		t.Fatalf("store init: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAddAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []string{
		"Fato sobre ana: Gosta de pizza",
		"Fato sobre ana: Gosta de rock",
		"Fato sobre ana: Mora em Lisboa",
	}
	for _, text := range seed {
		if err := store.Add(ctx, models.CollectionUserFacts, text, nil, ""); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got, err := store.Query(ctx, models.CollectionUserFacts, "ana pediu pizza", 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0] != "Fato sobre ana: Gosta de pizza" {
		t.Errorf("expected pizza fact first, got %v", got)
	}
}

func TestQueryClampsTopK(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, models.CollectionUserFacts, "Gosta de rock", nil, ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := store.Query(ctx, models.CollectionUserFacts, "rock", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("topK must clamp to collection size, got %d results", len(got))
	}
}

func TestQueryEmptyCollection(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Query(context.Background(), models.CollectionDailySummaries, "qualquer coisa", 3)
	if err != nil {
		t.Fatalf("query on empty collection must not fail: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, models.CollectionUserFacts, "Gosta de pizza", nil, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, models.CollectionDailySummaries, "Dia sobre pizza e rock", nil, ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	facts, err := store.Query(ctx, models.CollectionUserFacts, "pizza", 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(facts) != 1 {
		t.Errorf("expected only the facts collection searched, got %v", facts)
	}

	n, err := store.Count(ctx, models.CollectionDailySummaries)
	if err != nil || n != 1 {
		t.Errorf("expected 1 summary, got %d err=%v", n, err)
	}
}

func TestExplicitIDOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, models.CollectionUserFacts, "Gosta de pizza", nil, "fact_1_1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, models.CollectionUserFacts, "Gosta de rock", nil, "fact_1_1"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	n, err := store.Count(ctx, models.CollectionUserFacts)
	if err != nil || n != 1 {
		t.Errorf("same id must overwrite, got count %d err=%v", n, err)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.75, 0}
	decoded := decodeVector(encodeVector(vec))
	if len(decoded) != len(vec) {
		t.Fatalf("length changed: %d -> %d", len(vec), len(decoded))
	}
	for i := range vec {
		if decoded[i] != vec[i] {
			t.Errorf("position %d: %f -> %f", i, vec[i], decoded[i])
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	if got := cosineSimilarity(a, a); got < 0.999 {
		t.Errorf("identical vectors must be ~1, got %f", got)
	}
	if got := cosineSimilarity(a, b); got != 0 {
		t.Errorf("orthogonal vectors must be 0, got %f", got)
	}
	zero := make([]float32, 3)
	if got := cosineSimilarity(a, zero); got != 0 {
		t.Errorf("zero vector similarity must be 0, got %f", got)
	}
}
