package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yasinhessnawi1/strack/internal/catalog"
	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/pipeline"
	"github.com/yasinhessnawi1/strack/internal/validate"
)

var servePort int

// extractor is the part of the pipeline the HTTP API needs.
type extractor interface {
	Extract(ctx context.Context, input string, opts ...pipeline.Option) *model.ExtractionResult
	AIAvailable() bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the subscription parse API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := resolvePort(servePort, cfg.Server.Port)
		cfg.Server.Port = port

		env, err := initPipeline(cfg, "serve")
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.Pipeline, env.Catalog, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.Bool("ai_available", env.Pipeline.AIAvailable()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// resolvePort prefers the --port flag over the configured port.
func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

// newRouter builds the HTTP API over ex and cat.
func newRouter(ex extractor, cat *catalog.Catalog, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	h := &apiHandler{ex: ex, catalog: cat, validate: validator.New()}
	r.Get("/health", h.health)
	r.Get("/api/services", h.lookupService)
	r.Post("/api/subscriptions/parse", h.parse)
	return r
}

type apiHandler struct {
	ex       extractor
	catalog  *catalog.Catalog
	validate *validator.Validate
}

type parseRequest struct {
	Input string `json:"input"`
	URL   string `json:"url"`
}

type parseMeta struct {
	Source        model.Source `json:"source"`
	Confidence    float64      `json:"confidence"`
	AIAvailable   bool         `json:"aiAvailable"`
	AttemptsCount int          `json:"attemptsCount"`
	RunID         string       `json:"runId"`
}

type parseResponse struct {
	Data    model.ParserSubscriptionData `json:"data"`
	Message string                       `json:"message"`
	Meta    parseMeta                    `json:"meta"`
}

func (h *apiHandler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "aiAvailable": h.ex.AIAvailable()})
}

func (h *apiHandler) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := strings.TrimSpace(req.Input)
	if input == "" {
		input = strings.TrimSpace(req.URL)
	}
	if err := h.validate.Var(input, fmt.Sprintf("required,max=%d", validate.MaxInputLength)); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Tag() == "max" {
			respondError(w, http.StatusBadRequest, "Input exceeds maximum length")
			return
		}
		respondError(w, http.StatusBadRequest, "Input is required (URL or service name)")
		return
	}

	result, ok := h.extract(r.Context(), input)
	if !ok {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "Failed to parse subscription",
			"data":  map[string]any{"requiresManualInput": model.CoreFields()},
		})
		return
	}

	respondJSON(w, http.StatusOK, parseResponse{
		Data:    pipeline.ToParserSubscriptionData(result),
		Message: parseMessage(result),
		Meta: parseMeta{
			Source:        result.Source,
			Confidence:    result.Confidence,
			AIAvailable:   h.ex.AIAvailable(),
			AttemptsCount: len(result.Attempts),
			RunID:         result.RunID,
		},
	})
}

// extract runs the pipeline, turning a panic into ok=false.
func (h *apiHandler) extract(ctx context.Context, input string) (result *model.ExtractionResult, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("parse: extraction panicked",
				zap.Any("panic", rec),
				zap.String("request_id", middleware.GetReqID(ctx)),
			)
			result, ok = nil, false
		}
	}()
	return h.ex.Extract(ctx, input), true
}

func parseMessage(res *model.ExtractionResult) string {
	switch {
	case res.Success && len(res.RequiresManualInput) == 0:
		return fmt.Sprintf("Successfully extracted subscription info (via %s)", res.Source)
	case !res.Success && len(res.RequiresManualInput) > 0:
		return "Please provide: " + strings.Join(res.RequiresManualInput, ", ")
	default:
		return "Partial data extracted - please review and complete"
	}
}

func (h *apiHandler) lookupService(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	svc := h.catalog.FindByAliasOrName(q)
	if svc == nil {
		svc = h.catalog.FindByURL(q)
	}
	if svc == nil {
		respondError(w, http.StatusNotFound, "service not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": svc})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
