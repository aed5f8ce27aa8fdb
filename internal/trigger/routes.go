package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/shaharia-lab/triggerd/internal/logger"
)

type contextKey string

const ctxRequestID contextKey = "request_id"

const requestIDHeader = "X-Request-ID"

func (s *Server) routes(h Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)

	r.Get("/health", handleHealth)

	t := &triggerHandler{
		handler: h,
		maxBody: s.cfg.MaxBodyBytes,
		log:     s.log,
	}
	r.Get("/trigger", t.serveQuery)
	r.Post("/trigger", t.serveJSON)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Success: false, Error: CodeNotFound})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), ctxRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("Request handled", map[string]interface{}{
			"request_id": requestIDFromContext(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
		})
	})
}

// recoverer isolates a panicking request: the client gets a 500 and the
// listener keeps serving. http.ErrAbortHandler is re-raised so net/http drops
// the connection.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			s.log.Error("Panic while handling request", map[string]interface{}{
				"request_id":    requestIDFromContext(r.Context()),
				"path":          r.URL.Path,
				logger.ErrorKey: fmt.Sprint(rvr),
			})
			writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Error: CodeServerError})
		}()
		next.ServeHTTP(w, r)
	})
}

type triggerHandler struct {
	handler Handler
	maxBody int64
	log     logger.Logger
}

func (t *triggerHandler) serveQuery(w http.ResponseWriter, r *http.Request) {
	t.finish(w, r, parseQuery(r.URL.RawQuery))
}

func (t *triggerHandler) serveJSON(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > t.maxBody {
		t.abort(r, errBodyTooLarge)
	}

	req, err := readJSONRequest(r.Body, t.maxBody)
	switch {
	case errors.Is(err, errInvalidJSON):
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: CodeInvalidJSON})
		return
	case err != nil:
		t.abort(r, err)
	}

	t.finish(w, r, req)
}

// abort drops the connection without writing a response.
func (t *triggerHandler) abort(r *http.Request, reason error) {
	t.log.Warn("Dropping trigger connection", map[string]interface{}{
		"request_id":    requestIDFromContext(r.Context()),
		"remote_addr":   r.RemoteAddr,
		logger.ErrorKey: reason,
	})
	panic(http.ErrAbortHandler)
}

func (t *triggerHandler) finish(w http.ResponseWriter, r *http.Request, req Request) {
	if req.Cmd == "" {
		writeJSON(w, http.StatusBadRequest, triggerResponse{Success: false, Cmd: ""})
		return
	}

	outcome := invoke(r.Context(), t.handler, req)

	status := http.StatusOK
	if !outcome.OK() {
		status = http.StatusBadRequest
		t.log.Debug("Trigger command failed", map[string]interface{}{
			"request_id":    requestIDFromContext(r.Context()),
			"cmd":           req.Cmd,
			logger.ErrorKey: outcome.Reason(),
		})
	}
	writeJSON(w, status, triggerResponse{Success: outcome.OK(), Cmd: req.Cmd})
}

// invoke runs h and folds every failure mode, including a panic, into an Outcome.
func invoke(ctx context.Context, h Handler, req Request) (out Outcome) {
	defer func() {
		if rvr := recover(); rvr != nil {
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			out = Failure(fmt.Errorf("handler panic: %v", rvr))
		}
	}()

	ok, err := h(ctx, req.Cmd, req.Params)
	if err != nil {
		return Failure(err)
	}
	if !ok {
		return Failure(nil)
	}
	return Success()
}
