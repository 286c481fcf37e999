package agent

import (
	"math/rand"
	"strings"

	"sambot/internal/archive"
)

// responseEmojis are the emojis the bot is expected to sprinkle naturally.
// When none of them appear in a reply, a short reaction is appended.
var responseEmojis = []string{"😀", "🤔", "✨", "💜", "😊"}

// Expressions picks short idiomatic reactions based on the mood of the
// user's message. The pools live in the archive's expressions file.
type Expressions struct {
	archive *archive.Archive
}

func NewExpressions(arc *archive.Archive) *Expressions {
	return &Expressions{archive: arc}
}

// Reaction returns a short expression matching the content's tone, or empty
// when no pool is configured.
func (e *Expressions) Reaction(content string) string {
	data := e.archive.GetExpressions()
	if len(data) == 0 {
		return ""
	}

	lower := strings.ToLower(content)

	var pool []string
	switch {
	case containsAny(lower, "kkk", "haha", "lol", "engraçado"):
		pool = data["risada"]
	case containsAny(lower, "triste", "chorar", "ruim"):
		pool = data["triste"]
	case containsAny(lower, "uau", "nossa", "incrivel"):
		pool = data["surpresa"]
	default:
		pool = data["padrao"]
	}

	if len(pool) == 0 {
		return ""
	}
	return pool[rand.Intn(len(pool))]
}

// NeedsReaction reports whether the reply lacks any of the standard emojis.
func NeedsReaction(reply string) bool {
	for _, e := range responseEmojis {
		if strings.Contains(reply, e) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
