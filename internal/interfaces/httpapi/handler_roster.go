package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/wiratama/courtside/internal/auth"
	"github.com/wiratama/courtside/internal/usecase"
)

type signupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	PIN  string `json:"pin" validate:"required,len=4,numeric"`
}

type setPaidRequest struct {
	Paid *bool `json:"paid" validate:"required"`
}

func (h *Handler) ListRegistrants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRegistrants")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	roster, err := h.rosterService.Roster(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list registrants failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(roster))
}

func (h *Handler) SignupRegistrant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SignupRegistrant")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req signupRequest
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

	created, err := h.rosterService.Signup(ctx, usecase.SignupInput{
		SessionID: sessionID,
		Name:      req.Name,
		PIN:       req.PIN,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "signup failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, registrantToDTO(created))
}

// CancelRegistrant removes sign-ups. Users must present the registrant's PIN
// as a query parameter; a valid admin cookie bypasses the PIN check entirely.
func (h *Handler) CancelRegistrant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelRegistrant")
	defer span.End()

	registrantID := strings.TrimSpace(r.PathValue("registrantID"))
	role, _ := roleFromContext(ctx)

	err := h.rosterService.Cancel(ctx, usecase.CancelInput{
		RegistrantID:  registrantID,
		PIN:           strings.TrimSpace(r.URL.Query().Get("pin")),
		AdminOverride: role == auth.RoleAdmin,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "cancel registrant failed", "registrant_id", registrantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) SetRegistrantPaid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetRegistrantPaid")
	defer span.End()

	registrantID := strings.TrimSpace(r.PathValue("registrantID"))
	var req setPaidRequest
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

	updated, err := h.rosterService.SetPaid(ctx, registrantID, *req.Paid)
	if err != nil {
		h.logger.WarnContext(ctx, "set registrant paid failed", "registrant_id", registrantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrantToDTO(updated))
}

func (h *Handler) PromoteRegistrant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PromoteRegistrant")
	defer span.End()

	registrantID := strings.TrimSpace(r.PathValue("registrantID"))
	promoted, err := h.rosterService.Promote(ctx, registrantID)
	if err != nil {
		h.logger.WarnContext(ctx, "promote registrant failed", "registrant_id", registrantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrantToDTO(promoted))
}
