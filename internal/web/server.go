// Package web is the Status Server of spec.md §4.11: a minimal
// read-only gorilla/mux server exposing process liveness and the last
// run's statistics. Grounded on the teacher's internal/web/server.go
// (http.Server wrapped around a mux.Router, graceful shutdown on
// SIGINT/SIGTERM, read/write timeouts), stripped of its handlers/
// middleware/auth surface since the address graph builder has no
// review UI.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/gmorong/fias-ingest/internal/stats"
	"github.com/gmorong/fias-ingest/internal/storage"
)

// Server is the read-only status HTTP server.
type Server struct {
	db         *storage.Adapter
	httpServer *http.Server
	router     *mux.Router
}

// NewServer builds a Server bound to addr, reading the last run's
// statistics record from db (or fresh table counts if none is stored).
func NewServer(addr string, db *storage.Adapter) *Server {
	s := &Server{db: db}
	s.router = mux.NewRouter()
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DB.Ping(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "db unreachable: %v", err)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := stats.LoadOrCompute(s.db)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "failed to read stats: %v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// Start runs the server until a SIGINT/SIGTERM is received, then shuts
// down gracefully within a 30 second window.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("status server listening on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("status server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("shutting down status server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
