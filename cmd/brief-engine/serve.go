// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/brief-engine/internal/advisor"
	"github.com/pdiddy/brief-engine/internal/ingest"
	"github.com/pdiddy/brief-engine/internal/pipeline"
	"github.com/pdiddy/brief-engine/internal/sched"
	"github.com/pdiddy/brief-engine/internal/store"
	"github.com/pdiddy/brief-engine/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the briefing daemon",
	Long: `Serve runs the pipeline on a daily schedule (ingestion sweeps in the early
morning and at noon, synthesis after the morning sweep) and exposes an HTTP
API for reading reports, triggering runs, and asking the advisory panel.
Triggers are single-flight: a request while a run is in progress reports
already_running instead of queueing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return runServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8085", "HTTP listen address")

	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := loadConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := buildOracle(ctx, cfg)
	if err != nil {
		return err
	}
	var orc pipeline.Oracle
	if client != nil {
		defer client.Close()
		orc = client
	}

	producers, err := ingest.DefaultProducers(cfg.Ingest)
	if err != nil {
		return err
	}

	o := pipeline.New(st, orc, producers, cfg, os.Stderr)

	jobs, err := scheduleJobs(cfg.Schedule, o, logger)
	if err != nil {
		return err
	}
	scheduler := sched.New(jobs, logger)
	go scheduler.Run(ctx)

	srv := &http.Server{
		Addr:         addr,
		Handler:      newServeMux(st, o, orc, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// scheduleJobs maps the configured trigger times onto pipeline triggers.
// Scheduled and HTTP-triggered runs share the same single-flight guard.
func scheduleJobs(cfg types.ScheduleConfig, o *pipeline.Orchestrator, logger *slog.Logger) ([]sched.Job, error) {
	var jobs []sched.Job

	for i, at := range cfg.IngestAt {
		t, err := sched.ParseTimeOfDay(at)
		if err != nil {
			return nil, fmt.Errorf("schedule.ingest_at[%d]: %w", i, err)
		}
		jobs = append(jobs, sched.Job{
			Name: fmt.Sprintf("ingest-%s", t),
			At:   t,
			Run: func(ctx context.Context) {
				logger.Info("scheduled ingest", "outcome", o.TriggerIngest(ctx))
			},
		})
	}

	if cfg.SynthesizeAt != "" {
		t, err := sched.ParseTimeOfDay(cfg.SynthesizeAt)
		if err != nil {
			return nil, fmt.Errorf("schedule.synthesize_at: %w", err)
		}
		jobs = append(jobs, sched.Job{
			Name: "synthesize",
			At:   t,
			Run: func(ctx context.Context) {
				date, _ := parseDateArg("")
				logger.Info("scheduled synthesis", "date", types.DateKey(date),
					"outcome", o.TriggerSynthesis(ctx, date))
			},
		})
	}
	return jobs, nil
}

func newServeMux(st *store.Store, o *pipeline.Orchestrator, orc pipeline.Oracle, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("encoding response", "err", err)
		}
	}
	writeError := func(w http.ResponseWriter, status int, err error) {
		writeJSON(w, status, map[string]string{"error": err.Error()})
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, o.Status())
	})

	mux.HandleFunc("POST /api/trigger/ingest", func(w http.ResponseWriter, r *http.Request) {
		// Detached from the request context so the sweep survives the
		// client hanging up.
		writeJSON(w, http.StatusAccepted, map[string]string{"outcome": o.TriggerIngest(context.Background())})
	})

	mux.HandleFunc("POST /api/trigger/synthesize", func(w http.ResponseWriter, r *http.Request) {
		date, err := parseDateArg(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{
			"date":    types.DateKey(date),
			"outcome": o.TriggerSynthesis(context.Background(), date),
		})
	})

	mux.HandleFunc("GET /api/news", func(w http.ResponseWriter, r *http.Request) {
		limit, skip := 100, 0
		if s := r.URL.Query().Get("limit"); s != "" {
			if _, err := fmt.Sscanf(s, "%d", &limit); err != nil || limit <= 0 {
				writeError(w, http.StatusBadRequest, fmt.Errorf("bad limit %q", s))
				return
			}
		}
		if s := r.URL.Query().Get("skip"); s != "" {
			if _, err := fmt.Sscanf(s, "%d", &skip); err != nil || skip < 0 {
				writeError(w, http.StatusBadRequest, fmt.Errorf("bad skip %q", s))
				return
			}
		}
		records, err := st.RecentRecords(r.Context(), limit, skip)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if records == nil {
			records = []types.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	})

	mux.HandleFunc("GET /api/report", func(w http.ResponseWriter, r *http.Request) {
		date, err := parseDateArg(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		rep, err := st.GetReport(r.Context(), date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if rep == nil {
			writeError(w, http.StatusNotFound, fmt.Errorf("no report for %s", types.DateKey(date)))
			return
		}
		writeJSON(w, http.StatusOK, rep)
	})

	mux.HandleFunc("GET /api/reports", func(w http.ResponseWriter, r *http.Request) {
		limit := 14
		if s := r.URL.Query().Get("limit"); s != "" {
			if _, err := fmt.Sscanf(s, "%d", &limit); err != nil || limit <= 0 {
				writeError(w, http.StatusBadRequest, fmt.Errorf("bad limit %q", s))
				return
			}
		}
		reports, err := st.ListReports(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, reports)
	})

	mux.HandleFunc("GET /api/personas", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, advisor.Personas())
	})

	mux.HandleFunc("POST /api/ask", func(w http.ResponseWriter, r *http.Request) {
		if orc == nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("no oracle API key configured"))
			return
		}
		var req struct {
			Question   string   `json:"question"`
			PersonaIDs []string `json:"persona_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
			return
		}
		answers, err := advisor.New(orc).Ask(r.Context(), req.Question, req.PersonaIDs)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"question":  req.Question,
			"responses": answers,
		})
	})

	return logRequests(mux, logger)
}

func logRequests(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
