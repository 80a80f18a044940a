package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ury-pos/pos-core/internal/errors"
	"github.com/ury-pos/pos-core/internal/i18n"
	"github.com/ury-pos/pos-core/internal/logger"
	"github.com/ury-pos/pos-core/internal/repository"
	"github.com/ury-pos/pos-core/internal/service"
)

// VoidOperations is the void workflow as seen by the transports.
type VoidOperations interface {
	ValidateManager(ctx context.Context, rc service.RequestContext, req service.ValidateManagerRequest) service.Result
	ProcessVoidItem(ctx context.Context, rc service.RequestContext, req service.ProcessVoidItemRequest) service.Result
}

// OrderStatusReader reports kitchen progress for a table and invoice.
type OrderStatusReader interface {
	GetOrderStatus(ctx context.Context, rc service.RequestContext, table, invoice string) ([]service.OrderStatus, error)
}

// ErrorLogReader lists recent error log entries.
type ErrorLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]*repository.ErrorLogEntry, error)
}

// HTTPHandler handles HTTP requests
type HTTPHandler struct {
	voids    VoidOperations
	orders   OrderStatusReader
	errorLog ErrorLogReader
	health   func(ctx context.Context) error
	messages *i18n.Translator
	log      *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler. health may be nil.
func NewHTTPHandler(
	voids VoidOperations,
	orders OrderStatusReader,
	errorLog ErrorLogReader,
	health func(ctx context.Context) error,
	messages *i18n.Translator,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		voids:    voids,
		orders:   orders,
		errorLog: errorLog,
		health:   health,
		messages: messages,
		log:      log.Component("http"),
	}
}

// Routes builds the router. requestTimeout of zero disables the per-request
// deadline.
func (h *HTTPHandler) Routes(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}
	r.Use(requestContextMiddleware)

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/void/validate-manager", h.ValidateManager)
		r.Post("/void/items", h.ProcessVoidItem)
		r.Get("/orders/status", h.GetOrderStatus)
		r.Get("/error-log", h.ListErrorLog)
	})

	return r
}

// Health reports liveness, and database reachability when a check is wired.
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.log.Warn().Err(err).Msg("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ValidateManager checks a manager's credentials and void permission.
func (h *HTTPHandler) ValidateManager(w http.ResponseWriter, r *http.Request) {
	var req ValidateManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequestBody(w, r)
		return
	}

	res := h.voids.ValidateManager(r.Context(), requestContextFrom(r.Context()), req.toService())
	writeJSON(w, http.StatusOK, resultToResponse(res))
}

// ProcessVoidItem records voided lines on a draft invoice.
func (h *HTTPHandler) ProcessVoidItem(w http.ResponseWriter, r *http.Request) {
	var req ProcessVoidItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequestBody(w, r)
		return
	}

	res := h.voids.ProcessVoidItem(r.Context(), requestContextFrom(r.Context()), req.toService())
	writeJSON(w, http.StatusOK, resultToResponse(res))
}

// GetOrderStatus returns kitchen progress for ?table=&invoice=.
func (h *HTTPHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.orders.GetOrderStatus(r.Context(), requestContextFrom(r.Context()), q.Get("table"), q.Get("invoice"))
	if err != nil {
		var osErr *service.OrderStatusError
		switch {
		case stderrors.As(err, &osErr) && osErr.Kind == service.KindMissingParameter:
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: osErr.Message})
		case stderrors.As(err, &osErr):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: osErr.Message})
		default:
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: errorMessage(err)})
		}
		return
	}

	writeJSON(w, http.StatusOK, orderStatusesToResponse(orders))
}

// ListErrorLog returns the most recent error log entries, newest first.
func (h *HTTPHandler) ListErrorLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := h.errorLog.ListRecent(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list error log")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: errorMessage(err)})
		return
	}

	out := make([]ErrorLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, ErrorLogEntry{
			ID:        e.ID,
			Title:     e.Title,
			Message:   e.Message,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) badRequestBody(w http.ResponseWriter, r *http.Request) {
	msg := h.messages.Sprintf(requestContextFrom(r.Context()).Locale, i18n.MsgInvalidRequest)
	writeJSON(w, http.StatusBadRequest, ResultResponse{Message: msg})
}

func (h *HTTPHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func requestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := withRequestContext(r.Context(), requestContextFromHeaders(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// errorMessage prefers the user-facing message of an application error.
func errorMessage(err error) string {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
