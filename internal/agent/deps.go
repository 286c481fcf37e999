package agent

import "context"

// Generator is the slice of the LLM gateway the pipeline needs.
type Generator interface {
	// Generate never fails; on total provider exhaustion it returns the
	// offline sentinel text.
	Generate(ctx context.Context, systemPrompt, userPrompt string) string
	GenerateSummary(ctx context.Context, text string) (string, error)
}

// MemoryStore is the slice of the vector store the pipeline needs.
type MemoryStore interface {
	Add(ctx context.Context, collection, text string, metadata map[string]string, id string) error
	Query(ctx context.Context, collection, query string, topK int) ([]string, error)
}
