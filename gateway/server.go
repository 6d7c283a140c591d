// Package gateway exposes the conversation engine over an OpenAI-compatible
// HTTP API.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
	"github.com/parleyhq/parley/pkg/backend"
	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/chatctx"
	"github.com/parleyhq/parley/store"
	"github.com/parleyhq/parley/toolbox"
)

var logger = xlog.NewPackageLogger("github.com/parleyhq/parley", "gateway")

// ChatIDHeader carries an optional session identity. Requests with the
// same chat ID share message history within one process.
const ChatIDHeader = "X-Chat-Id"

// Server serves the OpenAI-compatible completion API.
type Server struct {
	cfg      *Config
	tb       *toolbox.Toolbox
	sessions store.MessageStore
	validate *validator.Validate
	started  time.Time
}

// NewServer creates a gateway server over the given engine.
// sessions may be nil, in which case the chat ID header is ignored.
func NewServer(cfg *Config, tb *toolbox.Toolbox, sessions store.MessageStore) *Server {
	return &Server{
		cfg:      cfg,
		tb:       tb,
		sessions: sessions,
		validate: validator.New(),
		started:  time.Now(),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("GET /v1/models", s.handleModels)
	return mux
}

// ListenAndServe runs the HTTP server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.KV(xlog.INFO, "status", "listening", "addr", s.cfg.ListenAddr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type completionRequest struct {
	Model    string         `json:"model"`
	Messages []chat.Message `json:"messages" validate:"required,min=1"`
	N        int            `json:"n" validate:"omitempty,gte=1,lte=16"`
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "failed to decode request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}

	ctx := r.Context()
	chatID := r.Header.Get(ChatIDHeader)
	conv := chat.NewConversation(req.Messages...)
	if s.sessions != nil && chatID != "" {
		ctx = chatctx.WithChatID(ctx, chatID)
		conv = chat.NewConversation(append(s.sessions.Messages(chatID), req.Messages...)...)
	}

	var resp *chat.Response
	var err error
	if req.N > 1 {
		resp, err = s.tb.GetNResponses(ctx, conv, req.N)
	} else {
		resp, err = s.tb.GetResponse(ctx, conv)
	}
	if err != nil {
		s.writeCompletionError(w, r, err)
		return
	}

	// Only single-choice calls have one canonical transcript to keep.
	if s.sessions != nil && chatID != "" && req.N <= 1 {
		_ = s.sessions.Reset(chatID)
		if err := s.sessions.Add(chatID, conv.Messages()...); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "status", "session_store_failed", "err", err.Error())
		}
		w.Header().Set(ChatIDHeader, chatID)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeCompletionError(w http.ResponseWriter, r *http.Request, err error) {
	logger.ContextKV(r.Context(), xlog.WARNING,
		"status", "completion_failed",
		"err", err.Error(),
	)
	if backend.IsUpstreamError(err) {
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

type modelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type modelList struct {
	Object string      `json:"object"`
	Data   []modelInfo `json:"data"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modelList{
		Object: "list",
		Data: []modelInfo{{
			ID:      s.cfg.Model,
			Object:  "model",
			Created: s.started.Unix(),
			OwnedBy: s.cfg.ModelOwner,
		}},
	})
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeError(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, errorResponse{
		Error: errorDetail{
			Message: msg,
			Type:    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
