package httpapi

import (
	"fmt"
	"net/http"

	"github.com/wiratama/courtside/internal/usecase"
)

type rolloverResultDTO struct {
	ArchivedCount int64  `json:"archivedCount"`
	EnsuredDate   string `json:"ensuredDate"`
	Created       bool   `json:"created"`
}

func (h *Handler) RunRolloverJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRolloverJob")
	defer span.End()

	if h.rolloverService == nil {
		writeError(ctx, w, fmt.Errorf("%w: rollover service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.rolloverService.Run(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "rollover job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rolloverResultDTO{
		ArchivedCount: result.ArchivedCount,
		EnsuredDate:   result.EnsuredDate,
		Created:       result.Created,
	})
}
