package agent

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Intent is the coarse category the normalizer assigns to a message.
type Intent struct {
	Name       string
	Query      string
	Normalized string
	Original   string
}

type slangRule struct {
	pattern     *regexp.Regexp
	replacement string
}

type intentRule struct {
	name     string
	patterns []*regexp.Regexp
}

// Normalizer sanitizes user text before it reaches the pipeline: strips
// emojis, collapses accidental repetitions, expands common Portuguese slang
// and folds accents.
type Normalizer struct {
	slang      []slangRule
	intents    []intentRule
	emojiRe    *regexp.Regexp
	accentFold transform.Transformer
}

func NewNormalizer() *Normalizer {
	slang := []slangRule{
		{regexp.MustCompile(`(?i)\bvc\b`), "voce"},
		{regexp.MustCompile(`(?i)\bvcs\b`), "voces"},
		{regexp.MustCompile(`(?i)\bpra\b`), "para"},
		{regexp.MustCompile(`(?i)\bpro\b`), "para o"},
		{regexp.MustCompile(`(?i)\bt[aá]\b`), "esta"},
		{regexp.MustCompile(`(?i)\bt[oô]\b`), "estou"},
		{regexp.MustCompile(`(?i)\beq\b`), "e que"},
		{regexp.MustCompile(`(?i)\bobg\b`), "obrigado"},
		{regexp.MustCompile(`(?i)\bq\b`), "que"},
		{regexp.MustCompile(`(?i)\bn\b`), "nao"},
	}

	intents := []intentRule{
		{"clima", compileAll(
			`clima\s+(?:em|no|na)?\s*(.+)`,
			`tempo\s+(?:em|no|na)?\s*(.+)`,
			`previsao\s+(?:do\s+tempo)?\s*(?:para)?\s*(.+)`,
			`vai\s+chover\s+(?:em|no|na)?\s*(.+)`,
		)},
		{"jogos", compileAll(
			`quanto\s+custa\s+(.+)`,
			`preco\s+(?:do|de)?\s*(.+)`,
			`vale\s+a\s+pena\s+comprar\s+(.+)`,
			`informacoes\s+sobre\s+o\s+jogo\s+(.+)`,
		)},
		{"busca", compileAll(
			`quem\s+e\s+(.+)`,
			`o\s+que\s+e\s+(.+)`,
			`pesquise\s+(?:sobre)?\s*(.+)`,
			`google\s+(.+)`,
		)},
	}

	return &Normalizer{
		slang:      slang,
		intents:    intents,
		emojiRe:    regexp.MustCompile(`[\x{10000}-\x{10FFFF}]`),
		accentFold: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Normalize runs the full sanitization chain and returns lowercase text
// without emojis, duplicates, slang or accents.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = n.emojiRe.ReplaceAllString(text, "")
	text = collapseDuplicates(text)

	for _, rule := range n.slang {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}

	if folded, _, err := transform.String(n.accentFold, text); err == nil {
		text = folded
	}

	return strings.ToLower(strings.TrimSpace(text))
}

// collapseDuplicates drops consecutive repeats of the same word, compared
// case-insensitively ("oi oi oi tudo bem" becomes "oi tudo bem").
func collapseDuplicates(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return text
	}
	out := fields[:1]
	for _, word := range fields[1:] {
		if strings.EqualFold(word, out[len(out)-1]) {
			continue
		}
		out = append(out, word)
	}
	return strings.Join(out, " ")
}

// Identify normalizes the text and matches it against the intent patterns.
// Unmatched messages fall back to the "conversa" intent.
func (n *Normalizer) Identify(content string) Intent {
	normalized := n.Normalize(content)

	for _, intent := range n.intents {
		for _, pattern := range intent.patterns {
			match := pattern.FindStringSubmatch(normalized)
			if match == nil {
				continue
			}
			extracted := strings.Trim(match[1], "?.! ,")
			if intent.name == "busca" && len(extracted) < 3 {
				continue
			}
			return Intent{Name: intent.name, Query: extracted, Normalized: normalized, Original: content}
		}
	}

	return Intent{Name: "conversa", Normalized: normalized, Original: content}
}
