// Package health exposes a liveness/readiness endpoint for the bot's
// dependencies: the LLM cascade and the vector memory store.
package health

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"sambot/internal/models"
)

const probeTimeout = 10 * time.Second

// LLMChecker probes whether any generation provider is reachable.
type LLMChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MemoryChecker verifies the vector store answers queries.
type MemoryChecker interface {
	Count(ctx context.Context, collection string) (int, error)
}

// Status is the JSON body of the health endpoint.
type Status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Counts map[string]int    `json:"memory_counts,omitempty"`
}

// Handler serves GET /health.
type Handler struct {
	llm    LLMChecker
	memory MemoryChecker
}

func NewHandler(llm LLMChecker, memory MemoryChecker) *Handler {
	return &Handler{llm: llm, memory: memory}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	status := Status{
		Status: "ok",
		Checks: map[string]string{},
		Counts: map[string]int{},
	}

	if h.llm != nil && h.llm.HealthCheck(ctx) {
		status.Checks["llm"] = "ok"
	} else {
		status.Checks["llm"] = "degraded"
	}

	memoryOK := true
	for _, collection := range []string{models.CollectionUserFacts, models.CollectionDailySummaries} {
		n, err := h.memory.Count(ctx, collection)
		if err != nil {
			memoryOK = false
			log.Printf("⚠️ [HEALTH] Falha ao contar %s: %v", collection, err)
			continue
		}
		status.Counts[collection] = n
	}
	if memoryOK {
		status.Checks["memory"] = "ok"
	} else {
		status.Checks["memory"] = "error"
	}

	code := http.StatusOK
	if status.Checks["memory"] == "error" {
		// A degraded LLM still answers with the offline sentinel; a broken
		// store means lost memories, so only that flips the status code.
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("⚠️ [HEALTH] Falha ao serializar resposta: %v", err)
	}
}
