package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"IntSentry/internal/config"
	"IntSentry/internal/query"

	"github.com/gorilla/mux"
)

const defaultLimit = 100

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.AttackLog.Enabled {
		log.Fatalf("Attack log is not enabled in config. API server cannot start.")
	}

	querier, err := query.NewClickHouseQuerier(cfg.AttackLog.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}
	defer querier.Close()

	r := mux.NewRouter()
	apiHandler := &APIHandler{querier: querier}
	r.HandleFunc("/api/v1/attacks", apiHandler.attacksHandler).Methods("GET")

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier query.Querier
}

// attacksHandler serves the attack-event history. Query parameters: since and
// until (RFC 3339, default last 24h), src_ip (exact match), limit.
func (h *APIHandler) attacksHandler(w http.ResponseWriter, r *http.Request) {
	q := query.AttackQuery{
		Since: time.Now().Add(-24 * time.Hour),
		Until: time.Now(),
		SrcIP: r.URL.Query().Get("src_ip"),
		Limit: defaultLimit,
	}

	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid since: %v", err), http.StatusBadRequest)
			return
		}
		q.Since = t
	}
	if v := r.URL.Query().Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid until: %v", err), http.StatusBadRequest)
			return
		}
		q.Until = t
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		q.Limit = n
	}

	events, err := h.querier.Attacks(r.Context(), q)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query attack events: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(events); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
