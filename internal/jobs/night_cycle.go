package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-co-op/gocron/v2"

	"sambot/internal/models"
)

// maxLogsPerCycle caps how many of the day's interactions feed the nightly
// summary prompt.
const maxLogsPerCycle = 100

const nightPromptHeader = "ATUE COMO UM ANALISTA DE DADOS E MEMÓRIA.\n" +
	"Analise os logs de conversa abaixo e identifique informações relevantes sobre os usuários.\n" +
	"FOCO: Nomes, preferências, eventos mencionados, ID usuario, humor recorrente, gosto musical e fatos biográficos.\n" +
	"REGRAS: Ignore comandos do sistema, erros técnicos ou saudações vazias.\n" +
	"FORMATO: Liste os fatos em tópicos diretos.\n" +
	"EXEMPLO: 123456789/nome: rock, musicas calmas, gosta de humor acido e tem 44 anos\n"

// Summarizer is the LLM slice the night cycle needs.
type Summarizer interface {
	GenerateSummary(ctx context.Context, text string) (string, error)
}

// MemoryWriter persists the consolidated summary.
type MemoryWriter interface {
	Add(ctx context.Context, collection, text string, metadata map[string]string, id string) error
}

// PreferenceSaver stores per-user music preferences extracted overnight.
type PreferenceSaver interface {
	SaveMusicPreference(userID, tags string) error
}

// LogBuffer accumulates the day's chat lines for the nightly consolidation.
type LogBuffer struct {
	mu    sync.Mutex
	lines []string
}

func NewLogBuffer() *LogBuffer {
	return &LogBuffer{}
}

// Record appends one interaction line.
func (b *LogBuffer) Record(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

// Drain returns all buffered lines and resets the buffer.
func (b *LogBuffer) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := b.lines
	b.lines = nil
	return lines
}

// Len returns the number of buffered lines.
func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// NightCycle consolidates the day's chat logs into long-term memory. Lines
// shaped like "<userID>: tags" become music preferences; everything else is
// indexed as a daily summary.
type NightCycle struct {
	llm    Summarizer
	memory MemoryWriter
	prefs  PreferenceSaver
	buffer *LogBuffer
	now    func() time.Time
}

func NewNightCycle(llm Summarizer, memory MemoryWriter, prefs PreferenceSaver, buffer *LogBuffer) *NightCycle {
	return &NightCycle{llm: llm, memory: memory, prefs: prefs, buffer: buffer, now: time.Now}
}

// RunMaintenance drains the buffer and runs one consolidation pass.
func (n *NightCycle) RunMaintenance(ctx context.Context) {
	log.Println("🌙 [NIGHT-CYCLE] Iniciando ciclo noturno...")

	chatLogs := n.buffer.Drain()
	if len(chatLogs) == 0 {
		log.Println("💤 [NIGHT-CYCLE] Nenhuma atividade recente para processar.")
		return
	}

	window := chatLogs
	if len(window) > maxLogsPerCycle {
		window = window[:maxLogsPerCycle]
	}

	prompt := nightPromptHeader + "LOGS DO DIA:\n" + strings.Join(window, "\n")

	log.Printf("⏳ [NIGHT-CYCLE] Sumarizando %d interações...", len(chatLogs))
	extracted, err := n.llm.GenerateSummary(ctx, prompt)
	if err != nil || strings.TrimSpace(extracted) == "" {
		log.Printf("🚫 [NIGHT-CYCLE] Falha ao gerar resumo noturno: %v", err)
		return
	}

	var remaining []string
	for _, line := range strings.Split(strings.TrimSpace(extracted), "\n") {
		userID, tags, ok := parsePreferenceLine(line)
		if !ok {
			remaining = append(remaining, line)
			continue
		}
		if err := n.prefs.SaveMusicPreference(userID, tags); err != nil {
			log.Printf("⚠️ [NIGHT-CYCLE] Erro ao salvar preferência da linha %q: %v", line, err)
			continue
		}
		log.Printf("💾 [NIGHT-CYCLE] Preferência musical salva para o usuário %s: %s", userID, tags)
	}

	summary := strings.TrimSpace(strings.Join(remaining, "\n"))
	if len(summary) <= 15 {
		log.Println("🗑️ [NIGHT-CYCLE] Resumo muito curto ou irrelevante. Descartando indexação.")
		return
	}

	err = n.memory.Add(ctx, models.CollectionDailySummaries, summary, map[string]string{
		"date":           n.now().Format("2006-01-02"),
		"type":           "night_summary",
		"context_length": fmt.Sprintf("%d", len(chatLogs)),
	}, "")
	if err != nil {
		log.Printf("❌ [NIGHT-CYCLE] Erro ao indexar resumo: %v", err)
		return
	}

	log.Println("☀️ [NIGHT-CYCLE] Ciclo de manutenção finalizado.")
}

// parsePreferenceLine matches "<something-with-digits>: tags" lines. The
// user ID is whatever digits precede the first colon.
func parsePreferenceLine(line string) (userID, tags string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}

	head := line[:idx]
	var digits strings.Builder
	for _, r := range head {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	userID = digits.String()
	tags = strings.TrimSpace(line[idx+1:])

	if userID == "" || tags == "" {
		return "", "", false
	}
	return userID, tags, true
}

// Schedule registers the nightly run with a gocron scheduler at the given
// local time and starts it. The returned shutdown func stops the scheduler.
func (n *NightCycle) Schedule(hour, minute int) (func() error, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			n.RunMaintenance(ctx)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule night cycle: %w", err)
	}

	scheduler.Start()
	log.Printf("🌙 [NIGHT-CYCLE] Agendado para %02d:%02d", hour, minute)
	return scheduler.Shutdown, nil
}
