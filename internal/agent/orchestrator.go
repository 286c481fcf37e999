package agent

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"sambot/internal/archive"
	"sambot/internal/logging"
	"sambot/internal/metrics"
	"sambot/internal/models"
	"sambot/internal/tools"
)

// apologyMessage is sent once whenever the pipeline blows up mid-turn.
const apologyMessage = "🤯 *Tive um pequeno curto-circuito. Pode repetir?*"

// chunkDelay paces multi-chunk replies.
const chunkDelay = 500 * time.Millisecond

// commandPrefixes are common bot prefixes; messages starting with one are
// assumed to target another bot and ignored.
var commandPrefixes = []string{"!", "/", ".", "?", "+", "-", "$", "%", "&", "*"}

// Conversation is what the orchestrator needs from the platform to answer
// a single message.
type Conversation interface {
	History(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	Reply(ctx context.Context, text string) error
	Send(ctx context.Context, text string) error
	React(ctx context.Context, emoji string) error
}

// Orchestrator runs the full cognition pipeline for each engaged message:
// fact learning, memory recall, tool routing, history compression and the
// final generation.
type Orchestrator struct {
	llm           Generator
	store         MemoryStore
	arc           *archive.Archive
	router        *Router
	extractor     *FactExtractor
	compressor    *Compressor
	normalizer    *Normalizer
	expressions   *Expressions
	selfKnowledge *SelfKnowledge

	botName       string
	commandPrefix string
	passiveChance float64
	historyLimit  int

	mu             sync.RWMutex // guards activeChannels
	activeChannels map[string]string

	randFloat func() float64
	now       func() time.Time
}

// OrchestratorParams groups the orchestrator's constructor dependencies.
type OrchestratorParams struct {
	LLM           Generator
	Store         MemoryStore
	Archive       *archive.Archive
	Registry      *tools.Registry
	BotName       string
	CommandPrefix string
	PassiveChance float64
	HistoryLimit  int
}

func NewOrchestrator(p OrchestratorParams) *Orchestrator {
	botName := p.BotName
	if botName == "" {
		botName = "SamBot"
	}
	historyLimit := p.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 10
	}

	return &Orchestrator{
		llm:            p.LLM,
		store:          p.Store,
		arc:            p.Archive,
		router:         NewRouter(p.LLM, p.Registry),
		extractor:      NewFactExtractor(p.LLM, p.Store),
		compressor:     NewCompressor(p.LLM),
		normalizer:     NewNormalizer(),
		expressions:    NewExpressions(p.Archive),
		selfKnowledge:  NewSelfKnowledge(p.Archive),
		botName:        botName,
		commandPrefix:  p.CommandPrefix,
		passiveChance:  p.PassiveChance,
		historyLimit:   historyLimit,
		activeChannels: copyBindings(p.Archive.LoadActiveChannels()),
		randFloat:      rand.Float64,
		now:            time.Now,
	}
}

// BindChannel activates a persona for a channel and persists the binding.
func (o *Orchestrator) BindChannel(channelID, persona string) error {
	if err := o.arc.SetChannelPersona(channelID, persona); err != nil {
		return err
	}
	o.mu.Lock()
	o.activeChannels[channelID] = persona
	o.mu.Unlock()
	return nil
}

// UnbindChannel removes a channel's persona binding.
func (o *Orchestrator) UnbindChannel(channelID string) error {
	if err := o.arc.ClearChannelPersona(channelID); err != nil {
		return err
	}
	o.mu.Lock()
	delete(o.activeChannels, channelID)
	o.mu.Unlock()
	return nil
}

// ActivePersona returns the persona bound to a channel, if any.
func (o *Orchestrator) ActivePersona(channelID string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	persona, ok := o.activeChannels[channelID]
	return persona, ok
}

// ReloadBindings re-reads the persisted channel bindings. Call it after the
// archive cache is invalidated so edits to channels.json take effect.
func (o *Orchestrator) ReloadBindings() {
	channels := copyBindings(o.arc.LoadActiveChannels())
	o.mu.Lock()
	o.activeChannels = channels
	o.mu.Unlock()
}

// copyBindings detaches the orchestrator's map from the archive cache so
// local writes never leak into cached state.
func copyBindings(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// HandleMessage is the entry point for every non-bot message. It applies
// the engagement gate and, when it passes, runs the pipeline.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg models.Message, conv Conversation) {
	if o.isCommand(msg.Content) {
		return
	}

	persona, hasPersona := o.ActivePersona(msg.ChannelID)
	passive := hasPersona && o.randFloat() < o.passiveChance

	if !msg.IsDM && !msg.MentionsBot && !msg.IsReplyToBot && !passive {
		return
	}

	cleanText := strings.TrimSpace(msg.Content)
	if cleanText == "" {
		cleanText = "Olá!"
	}

	inputText := cleanText
	if intent := o.normalizer.Identify(cleanText); intent.Normalized != "" {
		inputText = intent.Normalized
	}

	o.processCognition(ctx, msg, conv, inputText, persona)
}

// isCommand flags texts that look like commands for this or another bot.
func (o *Orchestrator) isCommand(content string) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return false
	}

	if o.commandPrefix != "" && strings.HasPrefix(content, o.commandPrefix) {
		return true
	}

	for _, prefix := range commandPrefixes {
		if strings.HasPrefix(content, prefix) && len(content) > 1 {
			rest := []rune(content[len(prefix):])
			if len(rest) > 0 && !unicode.IsSpace(rest[0]) {
				return true
			}
		}
	}
	return false
}

func (o *Orchestrator) processCognition(ctx context.Context, msg models.Message, conv Conversation, cleanText, persona string) {
	start := o.now()
	metrics.Get().RecordTurn()
	turnLog := logging.WithTurn(msg.ChannelID, msg.AuthorID)

	defer func() {
		if r := recover(); r != nil {
			turnLog.Error("🔥 [ORCHESTRATOR] Erro cognitivo", "panic", r)
			metrics.Get().RecordError("panic")
			if err := conv.Reply(ctx, apologyMessage); err != nil {
				log.Printf("❌ [ORCHESTRATOR] Falha ao enviar desculpas: %v", err)
			}
		}
	}()

	learnedFact := o.extractor.Learn(ctx, msg.AuthorID, msg.AuthorName, cleanText)
	if learnedFact != "" {
		if err := conv.React(ctx, "🧠"); err != nil {
			log.Printf("⚠️ [ORCHESTRATOR] Falha ao reagir: %v", err)
		}
	}

	if o.selfKnowledge.IsSelfInquiry(cleanText) {
		reply := o.llm.Generate(ctx, o.selfKnowledge.IdentityPrompt(), cleanText)
		o.deliver(ctx, conv, reply)
		return
	}

	memoryBlock := o.recallMemories(ctx, msg.AuthorID, cleanText)
	toolBlock := o.router.Route(ctx, cleanText)
	historyBlock := o.collectHistory(ctx, conv)

	systemPrompt := fmt.Sprintf("%s\nData: %s\n%s%s\nHistórico:\n%s",
		o.arc.GetPrompt(persona),
		o.now().Format("02/01/2006 15:04"),
		memoryBlock, toolBlock, historyBlock)

	if learnedFact != "" {
		systemPrompt += fmt.Sprintf(
			"\n[EVENTO DE SISTEMA]: Você ACABOU de aprender e salvar uma nova memória sobre o usuário: '%s'. "+
				"Use essa informação AGORA para dar uma resposta calorosa e confirmar que guardou isso!",
			learnedFact)
	}

	reply := o.llm.Generate(ctx, systemPrompt, fmt.Sprintf("%s: %s", msg.AuthorName, cleanText))

	if NeedsReaction(reply) {
		if reaction := o.expressions.Reaction(cleanText); reaction != "" {
			reply += " " + reaction
		}
	}

	elapsed := o.now().Sub(start)
	metrics.Get().RecordTurnLatency(elapsed.Seconds())
	turnLog.Info("🗣️ [ORCHESTRATOR] Resposta gerada", "autor", msg.AuthorName, "segundos", elapsed.Seconds())

	o.deliver(ctx, conv, reply)
}

// recallMemories builds the long-term memory block, or empty when nothing
// relevant was found.
func (o *Orchestrator) recallMemories(ctx context.Context, userID, query string) string {
	facts, err := o.store.Query(ctx, models.CollectionUserFacts, fmt.Sprintf("user:%s %s", userID, query), 2)
	if err != nil {
		log.Printf("❌ [ORCHESTRATOR] Erro RAG (fatos): %v", err)
	}
	summaries, err := o.store.Query(ctx, models.CollectionDailySummaries, query, 1)
	if err != nil {
		log.Printf("❌ [ORCHESTRATOR] Erro RAG (resumos): %v", err)
	}

	memories := append(facts, summaries...)
	if len(memories) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n[MEMÓRIA DE LONGO PRAZO RELEVANTE]:\n")
	for _, m := range memories {
		b.WriteString("- " + m + "\n")
	}
	return b.String()
}

func (o *Orchestrator) collectHistory(ctx context.Context, conv Conversation) string {
	entries, err := conv.History(ctx, o.historyLimit*3)
	if err != nil {
		log.Printf("⚠️ [ORCHESTRATOR] Falha ao ler histórico: %v", err)
		return ""
	}
	return o.compressor.Compress(ctx, Format(entries, o.botName))
}

// deliver splits the reply and sends the chunks, the first as a reply and
// the rest as plain messages.
func (o *Orchestrator) deliver(ctx context.Context, conv Conversation, text string) {
	chunks := SplitMessage(text)
	for i, chunk := range chunks {
		var err error
		if i == 0 {
			err = conv.Reply(ctx, chunk)
		} else {
			err = conv.Send(ctx, chunk)
		}
		if err != nil {
			log.Printf("❌ [ORCHESTRATOR] Erro ao enviar chunk: %v", err)
		}
		if len(chunks) > 1 && i < len(chunks)-1 {
			time.Sleep(chunkDelay)
		}
	}
}
