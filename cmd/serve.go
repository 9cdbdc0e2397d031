package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/review-insights/internal/config"
	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/pipeline"
	"github.com/sells-group/review-insights/internal/store"
)

var servePort int

// maxRequestBody caps POST bodies; a large review export fits well under it.
const maxRequestBody = 8 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for analyses and insights",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(config.ModeServe); err != nil {
			return err
		}
		env, err := initPipeline(ctx, false)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.Store, env.Pipeline),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// api serves the HTTP routes. st and p may be nil, in which case only the
// stateless routes work.
type api struct {
	store    store.Store
	pipeline *pipeline.Pipeline
}

// newRouter builds the chi router with its middleware stack.
func newRouter(st store.Store, p *pipeline.Pipeline) http.Handler {
	a := &api{store: st, pipeline: p}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", a.handleHealth)
	r.Post("/analyze", a.handleAnalyze)
	r.Post("/classify", a.handleClassify)
	r.Route("/businesses/{id}", func(r chi.Router) {
		r.Get("/insight", a.handleGetInsight)
		r.Post("/analyze", a.handleAnalyzeBusiness)
	})
	return r
}

func (a *api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeRequest is the body of POST /analyze.
type analyzeRequest struct {
	Business model.Business `json:"business"`
	Reviews  []model.Review `json:"reviews"`
	Insight  *model.Insight `json:"insight,omitempty"`
	Problem  string         `json:"problem,omitempty"`
}

// handleAnalyze builds a record from the posted reviews and optional
// insight. Nothing is stored and no collaborator is called.
func (a *api) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p := a.pipeline
	if p == nil {
		p = pipeline.New(cfg, nil, nil)
	}
	writeJSON(w, http.StatusOK, p.Build(req.Business, req.Reviews, req.Insight, req.Problem))
}

// classifyRequest is the body of POST /classify.
type classifyRequest struct {
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	ManualType string   `json:"manual_type"`
	Texts      []string `json:"texts"`
}

func (a *api) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reviews := make([]model.Review, 0, len(req.Texts))
	for _, t := range req.Texts {
		reviews = append(reviews, model.Review{Text: t})
	}
	c := pipeline.Classify(model.Business{Name: req.Name, Types: req.Types, ManualType: req.ManualType}, reviews)
	writeJSON(w, http.StatusOK, c)
}

func (a *api) handleGetInsight(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := a.store.GetInsight(r.Context(), id)
	if err != nil {
		zap.L().Error("get insight failed", zap.String("business_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load insight")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "no insight for business")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleAnalyzeBusiness runs the pipeline synchronously for a stored
// business and returns the fresh record.
func (a *api) handleAnalyzeBusiness(w http.ResponseWriter, r *http.Request) {
	if a.pipeline == nil || a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not configured")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := a.pipeline.Run(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "business not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// decodeBody reads a JSON body of at most maxRequestBody bytes into v and
// writes the error response itself when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
