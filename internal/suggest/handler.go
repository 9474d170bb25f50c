package suggest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"task-search-backend/internal/apperr"
	"task-search-backend/internal/auth"
	"task-search-backend/internal/httpx"
)

const (
	MsgTitleRequired    = "Task title is required"
	MsgConfigMissing    = "Supabase configuration missing"
	MsgGenerationFailed = "Failed to generate subtasks"
	MsgMethodNotAllowed = "Method not allowed"
	MsgInternalError    = "Internal server error"
)

type Generator interface {
	SuggestSubtasks(ctx context.Context, taskTitle string) ([]string, error)
}

type Request struct {
	TaskTitle string `json:"taskTitle"`
}

type Response struct {
	Subtasks []string `json:"subtasks"`
}

type Handler struct {
	configured bool
	resolver   auth.Resolver
	generator  Generator
	logger     *zap.Logger
}

// NewHandler builds the generate-subtasks endpoint. configured is false when the
// platform settings are missing; every POST is then answered with a 500.
func NewHandler(configured bool, resolver auth.Resolver, generator Generator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		configured: configured && resolver != nil && generator != nil,
		resolver:   resolver,
		generator:  generator,
		logger:     logger.With(zap.String("handler", "generate-subtasks")),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.SetCORSHeaders(w)

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic in handler", zap.Any("panic", rec))
			httpx.WriteError(w, http.StatusInternalServerError, MsgInternalError, h.logger)
		}
	}()

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		httpx.WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed, h.logger)
		return
	}

	var body Request
	if err := httpx.DecodeJSON(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error("decode request", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, MsgInternalError, h.logger)
		return
	}
	title := strings.TrimSpace(body.TaskTitle)
	if title == "" {
		httpx.WriteError(w, http.StatusBadRequest, MsgTitleRequired, h.logger)
		return
	}

	if !h.configured {
		httpx.WriteError(w, http.StatusInternalServerError, MsgConfigMissing, h.logger)
		return
	}

	id, err := auth.Authenticate(r.Context(), h.resolver, r.Header.Get("Authorization"))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			httpx.WriteError(w, http.StatusUnauthorized, apperr.MessageOf(err, auth.MsgInvalidAuthorization), h.logger)
			return
		}
		h.logger.Error("resolve user failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, MsgInternalError, h.logger)
		return
	}

	subtasks, err := h.generator.SuggestSubtasks(r.Context(), title)
	if err != nil {
		h.logger.Error("subtask generation failed",
			zap.String("user_id", id.UserID.String()),
			zap.Error(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, MsgGenerationFailed, h.logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, Response{Subtasks: subtasks}, h.logger)
}
