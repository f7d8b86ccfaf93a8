package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
	"github.com/joseph-ayodele/schedule-ingest/internal/export"
	"github.com/joseph-ayodele/schedule-ingest/internal/pipeline"
)

// maxBodyBytes bounds a request body. PDF payloads are not size checked by
// the validator, so this is the only limit they meet before the model call.
const maxBodyBytes = 32 << 20

// ScheduleService is what the transports need from the pipeline.
type ScheduleService interface {
	ParseSchedule(ctx context.Context, in pipeline.RawInput) (entity.ParseResult, error)
	ImportSchedule(ctx context.Context, scheduleID string, in pipeline.RawInput) (entity.ParseResult, int, error)
	ListClasses(ctx context.Context, scheduleID string) ([]entity.SavedClass, error)
}

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPHandler struct {
	svc      ScheduleService
	exporter *export.Service
	health   Pinger
	logger   *slog.Logger
}

// NewHTTPHandler builds the router. health may be nil when nothing is persisted.
func NewHTTPHandler(svc ScheduleService, exporter *export.Service, health Pinger, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	h := &HTTPHandler{svc: svc, exporter: exporter, health: health, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", h.handleHealth)
	r.Options("/parse-schedule", h.handlePreflight)
	r.Post("/parse-schedule", h.handleParse)
	r.Route("/schedules/{scheduleID}", func(r chi.Router) {
		r.Post("/import", h.handleImport)
		r.Get("/classes", h.handleListClasses)
		r.Get("/export.xlsx", h.handleExportXLSX)
		r.Get("/export.ics", h.handleExportICS)
	})
	return r
}

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range corsHeaders {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPHandler) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.logger.Warn("http.health.db_unavailable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) handleParse(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ParseSchedule(ctx, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type importResponse struct {
	entity.ParseResult
	Saved int `json:"saved"`
}

func (h *HTTPHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	res, n, err := h.svc.ImportSchedule(ctx, chi.URLParam(r, "scheduleID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{ParseResult: res, Saved: n})
}

func (h *HTTPHandler) handleListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.svc.ListClasses(h.requestContext(r), chi.URLParam(r, "scheduleID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"classes": classes})
}

func (h *HTTPHandler) savedClasses(w http.ResponseWriter, r *http.Request) ([]entity.ParsedClass, bool) {
	saved, err := h.svc.ListClasses(h.requestContext(r), chi.URLParam(r, "scheduleID"))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	if len(saved) == 0 {
		h.writeError(w, r, common.NewAppError("NOT_FOUND", "schedule has no classes", common.ErrNotFound))
		return nil, false
	}
	out := make([]entity.ParsedClass, 0, len(saved))
	for _, s := range saved {
		out = append(out, s.ParsedClass)
	}
	return out, true
}

func (h *HTTPHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	classes, ok := h.savedClasses(w, r)
	if !ok {
		return
	}
	data, err := h.exporter.ClassesXLSX(r.Context(), classes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.xlsx"`)
	_, _ = w.Write(data)
}

func (h *HTTPHandler) handleExportICS(w http.ResponseWriter, r *http.Request) {
	classes, ok := h.savedClasses(w, r)
	if !ok {
		return
	}
	opts := export.ICSOptions{Name: chi.URLParam(r, "scheduleID")}
	if tz := r.URL.Query().Get("tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			h.writeError(w, r, common.NewAppError("INVALID_INPUT", "unknown time zone "+tz, common.ErrInvalidInput))
			return
		}
		opts.Location = loc
	}
	data, _, err := h.exporter.ClassesICS(r.Context(), classes, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	_, _ = w.Write(data)
}

// requestContext carries chi's request id into the pipeline logs.
func (h *HTTPHandler) requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if id := middleware.GetReqID(ctx); id != "" {
		ctx = common.WithRequestID(ctx, id)
	}
	return ctx
}

func (h *HTTPHandler) decodeInput(w http.ResponseWriter, r *http.Request) (pipeline.RawInput, bool) {
	var in pipeline.RawInput
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		msg := "request body must be a JSON object"
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &tooLarge):
			msg = "request body too large"
		case errors.As(err, &typeErr):
			msg = typeErr.Field + " must be a string"
		}
		h.logger.Warn("http.decode.failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return in, false
	}
	return in, true
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := common.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("http.request.failed", "path", r.URL.Path, "status", code, "error", err)
	} else {
		h.logger.Info("http.request.rejected", "path", r.URL.Path, "status", code, "error", err)
	}
	writeJSON(w, code, errorBody{Error: common.PublicMessage(err)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
