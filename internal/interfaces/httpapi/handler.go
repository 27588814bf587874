package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wiratama/courtside/internal/domain/registrant"
	"github.com/wiratama/courtside/internal/domain/session"
	"github.com/wiratama/courtside/internal/platform/logging"
	"github.com/wiratama/courtside/internal/usecase"
)

type Handler struct {
	sessionService  *usecase.SessionService
	rosterService   *usecase.RosterService
	rolloverService *usecase.RolloverService
	authService     AuthService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	sessionService *usecase.SessionService,
	rosterService *usecase.RosterService,
	rolloverService *usecase.RolloverService,
	authService AuthService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		sessionService:  sessionService,
		rosterService:   rosterService,
		rolloverService: rolloverService,
		authService:     authService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type sessionDTO struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Courts     int     `json:"courts"`
	MaxPlayers int     `json:"maxPlayers"`
	Cost       float64 `json:"cost"`
	Archived   bool    `json:"archived"`
	CreatedAt  string  `json:"createdAt"`
}

// registrantDTO never carries the PIN; the redacted domain value already has
// it blanked, and the field simply does not exist here.
type registrantDTO struct {
	ID         string `json:"id"`
	SessionID  string `json:"sessionId"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	Waitlisted bool   `json:"waitlisted"`
	Paid       bool   `json:"paid"`
	SignedUpAt string `json:"signedUpAt"`
}

type rosterDTO struct {
	Main     []registrantDTO `json:"main"`
	Waitlist []registrantDTO `json:"waitlist"`
}

type sessionOverviewDTO struct {
	Session       sessionDTO      `json:"session"`
	Main          []registrantDTO `json:"main"`
	Waitlist      []registrantDTO `json:"waitlist"`
	PaidCount     int             `json:"paidCount"`
	CostPerPlayer float64         `json:"costPerPlayer"`
}

func sessionToDTO(v session.Session) sessionDTO {
	return sessionDTO{
		ID:         v.ID,
		Date:       v.Date.UTC().Format(session.DateFormat),
		Courts:     v.Courts,
		MaxPlayers: v.MaxPlayers,
		Cost:       v.Cost,
		Archived:   v.Archived,
		CreatedAt:  v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func registrantToDTO(v registrant.Registrant) registrantDTO {
	return registrantDTO{
		ID:         v.ID,
		SessionID:  v.SessionID,
		Name:       v.Name,
		Position:   v.Position,
		Waitlisted: v.Waitlisted,
		Paid:       v.Paid,
		SignedUpAt: v.SignedUpAt.UTC().Format(time.RFC3339),
	}
}

func registrantsToDTOs(items []registrant.Registrant) []registrantDTO {
	out := make([]registrantDTO, 0, len(items))
	for _, item := range items {
		out = append(out, registrantToDTO(item))
	}
	return out
}

func rosterToDTO(v usecase.Roster) rosterDTO {
	return rosterDTO{
		Main:     registrantsToDTOs(v.Main),
		Waitlist: registrantsToDTOs(v.Waitlist),
	}
}

func overviewToDTO(v usecase.SessionOverview) sessionOverviewDTO {
	return sessionOverviewDTO{
		Session:       sessionToDTO(v.Session),
		Main:          registrantsToDTOs(v.Main),
		Waitlist:      registrantsToDTOs(v.Waitlist),
		PaidCount:     v.PaidCount,
		CostPerPlayer: v.CostPerPlayer,
	}
}
