package agent

import (
	"strings"
	"unicode/utf8"
)

// chunkLimit stays under Discord's 2000 character message cap with margin
// for formatting.
const chunkLimit = 1900

// SplitMessage breaks long replies into sendable chunks, preferring to cut
// at newlines, then sentence ends, then spaces, then hard at the limit.
func SplitMessage(text string) []string {
	var chunks []string

	for len(text) > chunkLimit {
		window := text[:chunkLimit]

		splitIndex := strings.LastIndex(window, "\n")
		if splitIndex == -1 {
			splitIndex = strings.LastIndex(window, ". ")
			if splitIndex != -1 {
				splitIndex++
			}
		}
		if splitIndex == -1 {
			splitIndex = strings.LastIndex(window, " ")
		}
		if splitIndex == -1 {
			// Hard cut, backed up onto a rune boundary so multibyte
			// characters are never split across chunks.
			splitIndex = chunkLimit
			for splitIndex > 0 && !utf8.RuneStart(text[splitIndex]) {
				splitIndex--
			}
		}

		chunk := strings.TrimSpace(text[:splitIndex])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(text[splitIndex:])
	}

	if text != "" {
		chunks = append(chunks, text)
	}

	return chunks
}
