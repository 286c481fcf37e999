package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"sambot/internal/metrics"
	"sambot/internal/models"
)

// factTriggers gate the LLM call: extraction only runs when the message
// looks like it carries personal information.
var factTriggers = []string{
	"meu nome",
	"eu gosto",
	"eu amo",
	"eu odeio",
	"eu moro",
	"sou ",
	"tenho ",
	"meu aniversário",
	"trabalho com",
	"minha mãe",
	"meu pai",
}

const extractionSystemPrompt = "Você é o Núcleo de Memória da SamBot. Sua função é extrair fatos PERMANENTES sobre o usuário.\n" +
	"Analise a frase do usuário. Se for uma informação pessoal relevante (nome, gosto, profissão, local), extraia APENAS o fato.\n" +
	"Se for uma brincadeira, sarcasmo ou irrelevante, responda 'IGNORE'.\n" +
	"Exemplo: 'Eu amo pizza' -> 'Gosta de pizza'\n" +
	"Exemplo: 'Sou o batman' -> 'IGNORE'"

// FactExtractor validates candidate facts with the LLM and persists the
// accepted ones in long-term memory.
type FactExtractor struct {
	llm   Generator
	store MemoryStore
	now   func() time.Time
}

func NewFactExtractor(llm Generator, store MemoryStore) *FactExtractor {
	return &FactExtractor{llm: llm, store: store, now: time.Now}
}

// Learn inspects the message and returns the learned fact, or empty when
// nothing worth remembering was found. Storage failures are logged and
// swallowed; losing a fact must not break the turn.
func (f *FactExtractor) Learn(ctx context.Context, userID, userName, cleanText string) string {
	if !f.hasTrigger(cleanText) {
		return ""
	}

	extraction := f.llm.Generate(ctx, extractionSystemPrompt,
		fmt.Sprintf("Usuário %s disse: '%s'", userName, cleanText))

	if strings.Contains(strings.ToUpper(extraction), "IGNORE") || len(strings.TrimSpace(extraction)) < 3 {
		return ""
	}

	docID := fmt.Sprintf("fact_%s_%d", userID, f.now().Unix())
	err := f.store.Add(ctx, models.CollectionUserFacts,
		fmt.Sprintf("Fato sobre %s: %s", userName, extraction),
		map[string]string{
			"user_id":     userID,
			"timestamp":   f.now().Format(time.RFC3339),
			"source_text": cleanText,
		},
		docID)
	if err != nil {
		log.Printf("❌ [FACT-EXTRACTOR] Erro ao salvar fato: %v", err)
		return ""
	}

	metrics.Get().RecordFactLearned()
	log.Printf("🧠 [FACT-EXTRACTOR] Fato salvo para %s -> %s", userName, extraction)
	return extraction
}

func (f *FactExtractor) hasTrigger(text string) bool {
	lower := strings.ToLower(text)
	for _, trigger := range factTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
