package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/pathflow/internal/commands"
	"github.com/aretw0/pathflow/internal/logging"
	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Harness is the part of the flow harness the server drives.
type Harness interface {
	Start(ctx context.Context, name string) (domain.CommandResult, error)
	StartPopup(ctx context.Context, name string, sel domain.Selection, params domain.PopupParams) (domain.CommandResult, error)
	DeliverDialog(ctx context.Context, result domain.DialogResult) (domain.CommandResult, error)
	DeliverClick(ctx context.Context, raw domain.Point) (domain.CommandResult, error)
	Abandon(ctx context.Context) bool
	Pending() (domain.CommandResult, bool)
	Invocation() string
	Flows() []string
	Enabled(sel domain.Selection) []string
}

// History is the undo stack exposed over HTTP.
type History interface {
	Undo(ctx context.Context) error
	Redo(ctx context.Context) error
	CanUndo() bool
	CanRedo() bool
	Descriptions() []string
}

// Server exposes one editing session over HTTP. Calls into the harness are
// serialized: it behaves as the single event-processing loop of the session.
type Server struct {
	mu      sync.Mutex
	harness Harness
	history History
	streams *StreamManager
	locker  ports.Locker
	lockKey string
	lockTTL time.Duration
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLocker also takes a distributed lock around every mutating call, for
// sessions served by several processes.
func WithLocker(l ports.Locker, key string, ttl time.Duration) Option {
	return func(s *Server) {
		s.locker = l
		s.lockKey = key
		s.lockTTL = ttl
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server for the harness and its undo history.
func NewServer(h Harness, history History, opts ...Option) *Server {
	s := &Server{
		harness: h,
		history: history,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	return s
}

// Streams returns the SSE stream manager.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// ChangeListener forwards committed change events to SSE subscribers.
// Subscribe it on the notifier.
func (s *Server) ChangeListener(ctx context.Context, ev domain.ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("failed to marshal change event", "err", err)
		return
	}
	s.streams.Broadcast(ev.ModelID, string(payload))
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/flows", s.ListFlows)
	r.Post("/flows/{name}", s.StartFlow)
	r.Post("/flows/{name}/popup", s.StartPopup)
	r.Post("/dialog", s.DeliverDialog)
	r.Post("/click", s.DeliverClick)
	r.Post("/abandon", s.Abandon)
	r.Get("/pending", s.GetPending)
	r.Post("/undo", s.Undo)
	r.Post("/redo", s.Redo)
	r.Get("/history", s.GetHistory)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ResultView is the JSON form of a command result.
type ResultView struct {
	Progress   string                `json:"progress"`
	Flow       string                `json:"flow,omitempty"`
	NextStep   domain.StepID         `json:"next_step,omitempty"`
	Invocation string                `json:"invocation,omitempty"`
	Dialog     *domain.DialogRequest `json:"dialog,omitempty"`
	Mode       *domain.MouseMode     `json:"mode,omitempty"`
}

func newResultView(res domain.CommandResult, invocation string) ResultView {
	v := ResultView{
		Progress:   res.Progress.String(),
		Invocation: invocation,
		Dialog:     res.Dialog,
		Mode:       res.Mode,
	}
	if res.State != nil {
		v.Flow = res.State.FlowName()
		if !res.Progress.Terminal() {
			v.NextStep = res.State.CurrentStep()
		}
	}
	return v
}

// PopupRequest is the body of POST /flows/{name}/popup.
type PopupRequest struct {
	Selection domain.Selection   `json:"selection"`
	Params    domain.PopupParams `json:"params"`
}

// StartFlow handles POST /flows/{name}.
func (s *Server) StartFlow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mutate(w, r, func(ctx context.Context) (any, error) {
		res, err := s.harness.Start(ctx, name)
		if err != nil {
			return nil, err
		}
		return newResultView(res, s.harness.Invocation()), nil
	})
}

// StartPopup handles POST /flows/{name}/popup.
func (s *Server) StartPopup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var body PopupRequest
	if !decode(w, r, &body, s.logger) {
		return
	}
	s.mutate(w, r, func(ctx context.Context) (any, error) {
		res, err := s.harness.StartPopup(ctx, name, body.Selection, body.Params)
		if err != nil {
			return nil, err
		}
		return newResultView(res, s.harness.Invocation()), nil
	})
}

// DeliverDialog handles POST /dialog.
func (s *Server) DeliverDialog(w http.ResponseWriter, r *http.Request) {
	var body domain.DialogResult
	if !decode(w, r, &body, s.logger) {
		return
	}
	s.mutate(w, r, func(ctx context.Context) (any, error) {
		res, err := s.harness.DeliverDialog(ctx, body)
		if err != nil {
			return nil, err
		}
		return newResultView(res, s.harness.Invocation()), nil
	})
}

// DeliverClick handles POST /click.
func (s *Server) DeliverClick(w http.ResponseWriter, r *http.Request) {
	var body domain.Point
	if !decode(w, r, &body, s.logger) {
		return
	}
	s.mutate(w, r, func(ctx context.Context) (any, error) {
		res, err := s.harness.DeliverClick(ctx, body)
		if err != nil {
			return nil, err
		}
		return newResultView(res, s.harness.Invocation()), nil
	})
}

// Abandon handles POST /abandon.
func (s *Server) Abandon(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context) (any, error) {
		return map[string]bool{"abandoned": s.harness.Abandon(ctx)}, nil
	})
}

// Undo handles POST /undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context) (any, error) {
		if err := s.history.Undo(ctx); err != nil {
			return nil, err
		}
		return s.historyView(), nil
	})
}

// Redo handles POST /redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context) (any, error) {
		if err := s.history.Redo(ctx); err != nil {
			return nil, err
		}
		return s.historyView(), nil
	})
}

// GetPending handles GET /pending. It answers 204 when nothing is suspended.
func (s *Server) GetPending(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res, ok := s.harness.Pending()
	invocation := s.harness.Invocation()
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, newResultView(res, invocation))
}

// ListFlows handles GET /flows.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	sel := domain.Selection{ModelID: r.URL.Query().Get("model_id")}

	s.mu.Lock()
	resp := map[string][]string{
		"registered": s.harness.Flows(),
		"enabled":    s.harness.Enabled(sel),
	}
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, resp)
}

// GetHistory handles GET /history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	view := s.historyView()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, view)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SubscribeEvents handles GET /events (SSE). The optional model_id query
// parameter narrows the stream to one model.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	topic := r.URL.Query().Get("model_id")
	s.logger.Info("SSE: Subscribing to model changes", "model_id", topic)

	ch, cancel := s.streams.Subscribe(topic)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) historyView() map[string]any {
	return map[string]any{
		"entries":  s.history.Descriptions(),
		"can_undo": s.history.CanUndo(),
		"can_redo": s.history.CanRedo(),
	}
}

// mutate runs fn as the only caller of the harness and writes its result.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) (any, error)) {
	ctx := r.Context()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, s.lockKey, s.lockTTL)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("session busy: %w", err))
			return
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release session lock", "err", err)
			}
		}()
	}

	s.mu.Lock()
	resp, err := fn(ctx)
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// statusFor maps errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownFlow):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNothingToUndo), errors.Is(err, domain.ErrNothingToRedo):
		return http.StatusConflict
	case errors.Is(err, runtime.ErrNotAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrContractViolation):
		return http.StatusConflict
	case errors.Is(err, commands.ErrNoSelectionResolver):
		return http.StatusNotImplemented
	case errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrModelNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any, logger *slog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}
