package search

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"task-search-backend/internal/apperr"
	"task-search-backend/internal/httpx"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger.With(zap.String("handler", "smart-search"))}
}

type request struct {
	Query string `json:"query"`
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
		httpx.WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllow, h.logger)
		return
	}

	var body request
	if err := httpx.DecodeJSON(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, apperr.Wrap(apperr.KindInternal, MsgInternalError, err))
		return
	}

	res, err := h.svc.Search(r.Context(), r.Header.Get("Authorization"), body.Query)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, res, h.logger)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("search failed", zap.Stringer("kind", kind), zap.Error(err))
	} else {
		h.logger.Debug("search rejected", zap.Stringer("kind", kind), zap.Error(err))
	}
	httpx.WriteError(w, status, apperr.MessageOf(err, MsgInternalError), h.logger)
}
