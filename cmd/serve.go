package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/export"
	"github.com/leadharvest/leadharvest-cli/internal/model"
	"github.com/leadharvest/leadharvest-cli/internal/orchestrator"
	"github.com/leadharvest/leadharvest-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for scraping runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		format, err := export.ParseFormat(cfg.Export.Format)
		if err != nil {
			return err
		}

		api := &apiServer{
			ctx:    ctx,
			st:     st,
			orch:   buildOrchestrator(),
			format: format,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("serve: shutting down")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("serve: listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "serve: listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer exposes the run pipeline over HTTP. Runs execute
// asynchronously; clients poll GET /runs/{id} for the outcome.
type apiServer struct {
	ctx    context.Context
	st     store.Store
	orch   *orchestrator.Orchestrator
	format export.Format
}

func (s *apiServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/runs", s.handleCreateRun)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)

	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRunRequest struct {
	Query      string `json:"query"`
	Source     string `json:"source"`
	DataType   string `json:"data_type"`
	MaxResults int    `json:"max_results"`
}

func (s *apiServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	src := model.Source(req.Source)
	if src == "" {
		src = model.SourceCombined
	}
	switch src {
	case model.SourceWebSearch, model.SourcePronet, model.SourceMapSearch, model.SourceCombined:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown source"})
		return
	}

	dataType := req.DataType
	if dataType == "" {
		dataType = string(model.DataTypeContacts)
	}

	q := model.ParseQuery(req.Query)
	opts := newRunOptions(dataType, req.MaxResults)

	run, err := s.st.CreateRun(r.Context(), q, src, opts)
	if err != nil {
		zap.L().Error("serve: create run", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create run"})
		return
	}

	// Detached from the request context: the run outlives the HTTP call
	// and is stopped only by server shutdown.
	go s.execute(run.ID, src, q, opts)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"run_id": run.ID,
		"status": string(model.RunStatusQueued),
	})
}

func (s *apiServer) execute(runID string, src model.Source, q model.Query, opts model.RunOptions) {
	ctx := s.ctx
	_ = s.st.UpdateRunStatus(ctx, runID, model.RunStatusRunningSource)

	var (
		res *orchestrator.Result
		err error
	)
	if src == model.SourceCombined {
		res, err = s.orch.RunCombined(ctx, q, opts)
	} else {
		res, err = s.orch.RunSingle(ctx, src, q, opts)
	}
	if err != nil {
		zap.L().Error("serve: run failed",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		failRun(ctx, s.st, runID, nil, err)
		return
	}

	if _, err := finishRun(ctx, s.st, runID, res, s.format, ""); err != nil {
		zap.L().Error("serve: finish run",
			zap.String("run_id", runID),
			zap.Error(err),
		)
	}
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.st.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	if err != nil {
		zap.L().Error("serve: get run", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get run"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Status: model.RunStatus(r.URL.Query().Get("status")),
		Source: model.Source(r.URL.Query().Get("source")),
	}

	runs, err := s.st.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("serve: list runs", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs"})
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
