package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wiratama/courtside/internal/domain/session"
	"github.com/wiratama/courtside/internal/platform/id"
	"github.com/wiratama/courtside/internal/platform/logging"
)

// RolloverResult reports what one maintenance run did.
type RolloverResult struct {
	ArchivedCount int64
	EnsuredDate   string
	Created       bool
}

// RolloverService archives past sessions and guarantees a session exists for
// the next cycle. Run is idempotent within a day: the existence check plus
// the unique date constraint keep a double run from creating duplicates.
type RolloverService struct {
	sessionRepo session.Repository
	idGen       id.Generator
	logger      *logging.Logger
	weekday     time.Weekday
	now         func() time.Time
}

func NewRolloverService(
	sessionRepo session.Repository,
	idGen id.Generator,
	weekday time.Weekday,
	logger *logging.Logger,
) *RolloverService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RolloverService{
		sessionRepo: sessionRepo,
		idGen:       idGen,
		logger:      logger,
		weekday:     weekday,
		now:         time.Now,
	}
}

func (s *RolloverService) Run(ctx context.Context) (RolloverResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RolloverService.Run")
	defer span.End()

	today := dateOnly(s.now())

	archived, err := s.sessionRepo.ArchiveBefore(ctx, today)
	if err != nil {
		return RolloverResult{}, fmt.Errorf("archive past sessions: %w", err)
	}

	target := followingWeekday(today, s.weekday)
	result := RolloverResult{
		ArchivedCount: archived,
		EnsuredDate:   target.Format(session.DateFormat),
	}

	_, exists, err := s.sessionRepo.GetByDate(ctx, target)
	if err != nil {
		return RolloverResult{}, fmt.Errorf("check next session: %w", err)
	}
	if exists {
		s.logger.InfoContext(ctx, "rollover complete",
			"archived", archived,
			"ensured_date", result.EnsuredDate,
			"created", false,
		)
		return result, nil
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return RolloverResult{}, fmt.Errorf("generate session id: %w", err)
	}

	_, err = s.sessionRepo.Create(ctx, session.Session{
		ID:         newID,
		Date:       target,
		Courts:     session.DefaultCourts,
		MaxPlayers: session.DefaultMaxPlayers,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil && !errors.Is(err, session.ErrDuplicateDate) {
		return RolloverResult{}, fmt.Errorf("create next session: %w", err)
	}
	result.Created = err == nil

	s.logger.InfoContext(ctx, "rollover complete",
		"archived", archived,
		"ensured_date", result.EnsuredDate,
		"created", result.Created,
	)

	return result, nil
}
