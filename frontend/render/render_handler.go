package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	reqcontext "microsling/frontend/shared/context"
	"microsling/infrastructure/audit"
	"microsling/infrastructure/sqlite"
	"microsling/models"
)

// MaxContextBytes bounds the JSON context accepted by the action host.
const MaxContextBytes = 1 << 20

const (
	actionRender = "render"
	actionInvoke = "invoke"
)

// RenderCommandHandler runs the renderer as a web action: the rendered
// response fragment becomes the HTTP response. db and auditSvc may be nil.
func RenderCommandHandler(renderer *Renderer, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := renderRequest(w, r, renderer, db, auditSvc, actionRender)
		if !ok {
			return
		}
		for name, value := range c.Response.Headers {
			w.Header().Set(name, value)
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(c.Response.Body)); err != nil {
			reqcontext.LoggerFromContext(r.Context()).Error("write render response failed", slog.Any("err", err))
		}
	}
}

// InvokeCommandHandler runs the renderer and returns the mutated context as
// JSON. db and auditSvc may be nil.
func InvokeCommandHandler(renderer *Renderer, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := renderRequest(w, r, renderer, db, auditSvc, actionInvoke)
		if !ok {
			return
		}
		writeJSON(w, r, http.StatusOK, c)
	}
}

// RenderLogQueryHandler lists recent render audit rows as JSON.
func RenderLogQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := DefaultRenderLogLimit
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		rows, err := LoadRenderLog(r.Context(), db, limit)
		if err != nil {
			reqcontext.LoggerFromContext(r.Context()).Error("load render log failed", slog.Any("err", err))
			http.Error(w, "failed to load render log", http.StatusInternalServerError)
			return
		}
		writeJSON(w, r, http.StatusOK, rows)
	}
}

func renderRequest(w http.ResponseWriter, r *http.Request, renderer *Renderer, db *sqlite.DB, auditSvc *audit.Service, action string) (*Context, bool) {
	entry := audit.Entry{
		RequestID: middleware.GetReqID(r.Context()),
		Action:    action,
		Escaped:   renderer.EscapeHTML,
	}

	c, err := decodeContext(w, r)
	if err == nil {
		_, err = renderer.Render(r.Context(), c)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			http.Error(w, "context too large", http.StatusRequestEntityTooLarge)
			entry.Outcome = models.OutcomeTooLarge
		case errors.Is(err, ErrMalformedInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
			entry.Outcome = models.OutcomeMalformedInput
		default:
			reqcontext.LoggerFromContext(r.Context()).Error("render failed", slog.String("action", action), slog.Any("err", err))
			http.Error(w, "failed to render", http.StatusInternalServerError)
			return nil, false
		}
		recordAudit(r, db, auditSvc, entry)
		return nil, false
	}

	resource, _ := ResolveResource(c)
	entry.Outcome = models.OutcomeOK
	entry.Title = resource.Title
	entry.Body = c.Response.Body
	entry.ContentType = c.Response.Headers["Content-Type"]
	recordAudit(r, db, auditSvc, entry)
	return c, true
}

func decodeContext(w http.ResponseWriter, r *http.Request) (*Context, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxContextBytes))
	var c Context
	if err := dec.Decode(&c); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: invalid JSON context: %v", ErrMalformedInput, err)
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: trailing data after JSON context", ErrMalformedInput)
	}
	return &c, nil
}

func recordAudit(r *http.Request, db *sqlite.DB, auditSvc *audit.Service, e audit.Entry) {
	if db == nil || auditSvc == nil {
		return
	}
	if err := auditSvc.Record(r.Context(), db, e); err != nil {
		reqcontext.LoggerFromContext(r.Context()).Error("record render audit failed",
			slog.String("request_id", e.RequestID), slog.Any("err", err))
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		reqcontext.LoggerFromContext(r.Context()).Error("encode json response failed", slog.Any("err", err))
	}
}
