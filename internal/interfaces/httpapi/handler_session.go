package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/wiratama/courtside/internal/usecase"
)

type createSessionRequest struct {
	Date   string `json:"date" validate:"required"`
	Courts int    `json:"courts" validate:"required,min=1"`
}

type updateSessionRequest struct {
	Courts   *int     `json:"courts" validate:"omitempty,min=1"`
	Cost     *float64 `json:"cost" validate:"omitempty,min=0"`
	Archived *bool    `json:"archived"`
}

func (h *Handler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentSession")
	defer span.End()

	current, err := h.sessionService.Current(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get current session failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(current))
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSessions")
	defer span.End()

	includeArchived := false
	if raw := strings.TrimSpace(r.URL.Query().Get("includeArchived")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: includeArchived must be a boolean", usecase.ErrInvalidInput))
			return
		}
		includeArchived = parsed
	}

	sessions, err := h.sessionService.List(ctx, includeArchived)
	if err != nil {
		h.logger.ErrorContext(ctx, "list sessions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]sessionDTO, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, sessionToDTO(s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSessionsOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSessionsOverview")
	defer span.End()

	overviews, err := h.sessionService.Overview(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get sessions overview failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]sessionOverviewDTO, 0, len(overviews))
	for _, o := range overviews {
		items = append(items, overviewToDTO(o))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSession")
	defer span.End()

	var req createSessionRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.sessionService.Create(ctx, usecase.CreateSessionInput{
		Date:   req.Date,
		Courts: req.Courts,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create session failed", "date", req.Date, "courts", req.Courts, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(created))
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSession")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req updateSessionRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.sessionService.Update(ctx, sessionID, usecase.UpdateSessionInput{
		Courts:   req.Courts,
		Cost:     req.Cost,
		Archived: req.Archived,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update session failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(updated))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSession")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	if err := h.sessionService.Delete(ctx, sessionID); err != nil {
		h.logger.WarnContext(ctx, "delete session failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}
