package models

// Identity is the bot's self-description document (Data/Config/identity.json),
// consumed read-only by the self-knowledge fast path.
type Identity struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Author       string            `json:"author"`
	Brain        map[string]string `json:"brain"`
	Architecture map[string]string `json:"architecture"`
}
