package agent

import (
	"context"
	"log"
	"strings"

	"sambot/internal/models"
)

const (
	// recentWindow is how many of the latest lines are always kept verbatim.
	recentWindow = 10
	// maxLineLen truncates individual history lines, in runes, before they
	// reach the prompt.
	maxLineLen = 300
)

// Compressor turns raw channel history into a compact prompt block. Long
// histories get their older part summarized by the LLM; short ones pass
// through verbatim.
type Compressor struct {
	llm Generator
}

func NewCompressor(llm Generator) *Compressor {
	return &Compressor{llm: llm}
}

// Format flattens history entries into "Author: content" lines, oldest
// first, skipping empty messages.
func Format(entries []models.HistoryEntry, botName string) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Content == "" {
			continue
		}
		author := "User"
		if entry.FromBot {
			author = botName
		}
		content := strings.ReplaceAll(entry.Content, "\n", " ")
		if runes := []rune(content); len(runes) > maxLineLen {
			content = string(runes[:maxLineLen])
		}
		lines = append(lines, author+": "+content)
	}
	return lines
}

// Compress returns the history block for the system prompt. With more than
// recentWindow lines the older part is condensed into a [RESUMO] header
// followed by the raw tail; if the summarizer fails, only the tail is used.
func (c *Compressor) Compress(ctx context.Context, lines []string) string {
	if len(lines) <= recentWindow {
		return strings.Join(lines, "\n")
	}

	older := lines[:len(lines)-recentWindow]
	recent := lines[len(lines)-recentWindow:]

	summary, err := c.llm.GenerateSummary(ctx, strings.Join(older, "\n"))
	if err != nil || strings.TrimSpace(summary) == "" {
		log.Printf("⚠️ [HISTORY] Falha ao resumir histórico antigo: %v", err)
		return strings.Join(recent, "\n")
	}

	return "[RESUMO]: " + strings.TrimSpace(summary) + "\n[MENSAGENS RECENTES]:\n" + strings.Join(recent, "\n")
}
