package models

// Collection names for long-term memory
const (
	CollectionUserFacts      = "fatos_usuario"
	CollectionDailySummaries = "resumos_diarios"
)

// MemoryRecord is a durable piece of text (fact or daily summary) with its
// similarity score filled in on query results.
type MemoryRecord struct {
	ID         string            `json:"id"`
	Collection string            `json:"collection"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float64           `json:"similarity,omitempty"`
}

// ToolCall is one entry of the LLM-proposed tool invocation plan.
type ToolCall struct {
	Tool string `json:"tool"`
	Args string `json:"args"`
}
