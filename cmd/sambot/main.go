package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sambot/internal/agent"
	"sambot/internal/archive"
	"sambot/internal/config"
	"sambot/internal/health"
	"sambot/internal/jobs"
	"sambot/internal/llm"
	"sambot/internal/logging"
	"sambot/internal/memory"
	"sambot/internal/metrics"
	"sambot/internal/platform"
	"sambot/internal/tools"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ Arquivo .env não encontrado, usando variáveis do ambiente")
	}

	logging.Init()
	cfg := config.Load()

	if cfg.DiscordToken == "" {
		log.Fatal("❌ DISCORD_TOKEN não configurado")
	}

	metrics.Init()

	arc, err := archive.New(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Falha ao inicializar arquivo de dados: %v", err)
	}

	gateway := llm.NewGateway(cfg)

	pool, cloudEmbed := gateway.CloudEmbedder()
	embedder := memory.NewFailoverEmbedder(cfg.OllamaLocalURL, cfg.EmbedModel, pool, cloudEmbed)

	dbPath := filepath.Join(cfg.DataDir, "Persistence", "memoria.db")
	store, err := memory.NewStore(dbPath, embedder)
	if err != nil {
		log.Fatalf("❌ Falha ao abrir memória vetorial: %v", err)
	}
	defer store.Close()

	if cfg.MetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/health", health.NewHandler(gateway, store))
		go func() {
			log.Printf("📊 Métricas e health em :%s", cfg.MetricsPort)
			if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
				log.Printf("⚠️ Servidor de observabilidade encerrado: %v", err)
			}
		}()
	}

	registry := tools.NewRegistry()
	searcher := tools.NewWebSearcher()
	registry.Register(tools.NewWeatherTool())
	registry.Register(tools.NewGameSearchTool(tools.NewGamePriceService(tools.NewCurrencyService())))
	registry.Register(tools.NewImageSearchTool(tools.NewImageSearcher()))
	registry.Register(tools.NewWebSearchTool(searcher))
	registry.Register(tools.NewMusicRecommendTool(searcher))

	orchestrator := agent.NewOrchestrator(agent.OrchestratorParams{
		LLM:           gateway,
		Store:         store,
		Archive:       arc,
		Registry:      registry,
		BotName:       arc.GetIdentity().Name,
		CommandPrefix: cfg.BotPrefix,
		PassiveChance: cfg.PassiveEngageChance,
		HistoryLimit:  cfg.HistoryLimit,
	})

	buffer := jobs.NewLogBuffer()
	nightCycle := jobs.NewNightCycle(gateway, store, arc, buffer)
	stopScheduler, err := nightCycle.Schedule(3, 0)
	if err != nil {
		log.Fatalf("❌ Falha ao agendar ciclo noturno: %v", err)
	}
	defer func() {
		if err := stopScheduler(); err != nil {
			log.Printf("⚠️ Erro ao parar agendador: %v", err)
		}
	}()

	adapter, err := platform.NewDiscordAdapter(cfg.DiscordToken, orchestrator, buffer)
	if err != nil {
		log.Fatalf("❌ Falha ao criar sessão Discord: %v", err)
	}
	if err := adapter.Open(); err != nil {
		log.Fatalf("❌ Falha ao conectar no Discord: %v", err)
	}
	defer adapter.Close()

	log.Println("🧠 Cérebro conectado. Pressione Ctrl+C para encerrar.")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("👋 Encerrando...")
}
