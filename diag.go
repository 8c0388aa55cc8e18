package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// latestStore keeps the most recent raw snapshot and its parsed form for
// the diagnostics endpoints, decoupled from the render loop's state.
type latestStore struct {
	mu   sync.Mutex
	raw  []byte
	snap *Snapshot
	at   time.Time
}

func newLatestStore() *latestStore {
	return &latestStore{}
}

func (l *latestStore) set(raw []byte, s *Snapshot) {
	l.mu.Lock()
	l.raw = append(l.raw[:0], raw...)
	l.snap = s
	l.at = time.Now()
	l.mu.Unlock()
}

func (l *latestStore) get() ([]byte, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.raw...), l.at
}

// startDiagServer serves read-only debugging endpoints on a local port:
// the raw latest snapshot, feed counters, and a liveness check.
func startDiagServer(addr string, st *stats, store *latestStore) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(st.values()); err != nil {
			logDebug("diag: encode stats: %v", err)
		}
	})

	r.Get("/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		raw, at := store.get()
		if len(raw) == 0 {
			http.Error(w, "no snapshot yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Snapshot-Time", at.Format(time.RFC3339Nano))
		w.Write(raw)
	})

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		logDebug("diag: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logError("diag server: %v", err)
		}
	}()
	return srv
}
