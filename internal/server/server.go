package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/salemate/franchise-performance/internal/analytics"
	"github.com/salemate/franchise-performance/internal/commission"
	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/metrics"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/internal/report"
	"github.com/salemate/franchise-performance/internal/store"
	"github.com/salemate/franchise-performance/pkg/constants"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	builder     *report.Builder
	calculator  *commission.Calculator
	metrics     *metrics.Metrics
	maxBodySize int64
	version     string
	timeFrame   comparison.TimeFrame
	now         func() time.Time
}

// Options carries the tunables of the HTTP handler.
type Options struct {
	MaxBodySize int64
	Version     string
	// TimeFrame is used by comparisons that do not name one.
	TimeFrame comparison.TimeFrame
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewHandler constructs the HTTP handler that serves the performance API.
func NewHandler(logger *zap.Logger, builder *report.Builder, calculator *commission.Calculator, m *metrics.Metrics, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calculator == nil {
		calculator = commission.NewCalculator(logger, builder.Rates())
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}
	if opts.TimeFrame == "" {
		opts.TimeFrame = comparison.Monthly
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &handler{
		logger:      logger,
		builder:     builder,
		calculator:  calculator,
		metrics:     m,
		maxBodySize: opts.MaxBodySize,
		version:     trimmedVersion,
		timeFrame:   opts.TimeFrame,
		now:         opts.Now,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/franchises", h.instrument("franchises", h.handleFranchises))
	mux.Handle("GET /api/franchises/{id}/report", h.instrument("report", h.handleReport))
	mux.Handle("GET /api/comparison", h.instrument("comparison", h.handleComparison))
	mux.Handle("POST /api/commission", h.instrument("commission", h.handleCommission))
	mux.Handle("GET /api/version", h.instrument("version", h.handleVersion))
	mux.Handle("GET /metrics", m.Handler())

	return mux
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handler) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		elapsed := time.Since(start)
		h.metrics.ObserveRequest(route, rec.status, elapsed)
		h.logger.Debug("request served",
			zap.String("op", "server.instrument"),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
	})
}

type franchiseSummary struct {
	ID        string `json:"id"`
	Slug      string `json:"slug,omitempty"`
	Name      string `json:"name"`
	Headcount int    `json:"headcount"`
	IsActive  bool   `json:"isActive"`
}

func (h *handler) handleFranchises(w http.ResponseWriter, r *http.Request) {
	franchises, err := h.builder.Source().Franchises(r.Context())
	if err != nil {
		h.respondFailure(w, err, "server.handleFranchises")
		return
	}

	summaries := make([]franchiseSummary, 0, len(franchises))
	for _, f := range franchises {
		summaries = append(summaries, franchiseSummary{
			ID:        f.ID,
			Slug:      f.Slug,
			Name:      f.Name,
			Headcount: f.Headcount,
			IsActive:  f.IsActive,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"franchises": summaries})
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tf := comparison.TimeFrame(strings.TrimSpace(r.URL.Query().Get("timeframe")))
	if tf != "" {
		parsed, err := comparison.ParseTimeFrame(string(tf))
		if err != nil {
			h.respondFailure(w, err, "server.handleReport")
			return
		}
		tf = parsed
	}

	rep, err := h.builder.FranchiseAt(r.Context(), id, tf, h.now())
	if err != nil {
		h.respondFailure(w, err, "server.handleReport")
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *handler) handleComparison(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	tf := h.timeFrame
	if raw := strings.TrimSpace(query.Get("timeframe")); raw != "" {
		parsed, err := comparison.ParseTimeFrame(raw)
		if err != nil {
			h.respondFailure(w, err, "server.handleComparison")
			return
		}
		tf = parsed
	}

	result, err := h.builder.CompareAt(r.Context(), comparison.ParseIDs(query.Get("ids")), tf, h.now())
	if err != nil {
		h.respondFailure(w, err, "server.handleComparison")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type commissionRequest struct {
	FranchiseID string   `json:"franchiseId"`
	Amount      float64  `json:"amount"`
	Roles       []string `json:"roles"`
}

func (h *handler) handleCommission(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCommission"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var req commissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}
	if strings.TrimSpace(req.FranchiseID) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "franchiseId is required", op)
		return
	}

	roles := make([]model.Role, 0, len(req.Roles))
	for _, raw := range req.Roles {
		role, err := model.ParseRole(raw)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		roles = append(roles, role)
	}

	in, err := h.builder.Source().Load(r.Context(), req.FranchiseID)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}

	breakdown, err := h.calculator.Compute(req.Amount, roles, model.NewCutTable(in.CommissionCuts))
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, breakdown)
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrFranchiseNotFound):
		return http.StatusNotFound
	case errors.Is(err, analytics.ErrMissingData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, comparison.ErrUnknownTimeFrame), errors.Is(err, commission.ErrInvalidAmount):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *handler) respondFailure(w http.ResponseWriter, err error, op string) {
	h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	log := h.logger.Warn
	if status >= http.StatusInternalServerError {
		log = h.logger.Error
	}
	log("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
