package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/wiratama/courtside/internal/domain/registrant"
	"github.com/wiratama/courtside/internal/domain/session"
	"github.com/wiratama/courtside/internal/platform/id"
	"github.com/wiratama/courtside/internal/platform/logging"
	"github.com/wiratama/courtside/internal/platform/sessionlock"
)

const overviewWorkerCount = 4

type CreateSessionInput struct {
	Date   string
	Courts int
}

type UpdateSessionInput struct {
	Courts   *int
	Cost     *float64
	Archived *bool
}

// SessionOverview is one session with its full roster, for the admin
// dashboard.
type SessionOverview struct {
	Session       session.Session
	Main          []registrant.Registrant
	Waitlist      []registrant.Registrant
	PaidCount     int
	CostPerPlayer float64
}

type SessionService struct {
	sessionRepo    session.Repository
	registrantRepo registrant.Repository
	locks          *sessionlock.Keyed
	idGen          id.Generator
	logger         *logging.Logger
	weekday        time.Weekday
	now            func() time.Time
}

func NewSessionService(
	sessionRepo session.Repository,
	registrantRepo registrant.Repository,
	locks *sessionlock.Keyed,
	idGen id.Generator,
	weekday time.Weekday,
	logger *logging.Logger,
) *SessionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SessionService{
		sessionRepo:    sessionRepo,
		registrantRepo: registrantRepo,
		locks:          locks,
		idGen:          idGen,
		logger:         logger,
		weekday:        weekday,
		now:            time.Now,
	}
}

func (s *SessionService) Create(ctx context.Context, input CreateSessionInput) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Create")
	defer span.End()

	date, err := time.ParseInLocation(session.DateFormat, strings.TrimSpace(input.Date), time.UTC)
	if err != nil {
		return session.Session{}, fmt.Errorf("%w: date must be formatted as %s", ErrInvalidInput, session.DateFormat)
	}

	maxPlayers, err := session.MaxPlayersForCourts(input.Courts)
	if err != nil {
		return session.Session{}, err
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return session.Session{}, fmt.Errorf("generate session id: %w", err)
	}

	created, err := s.sessionRepo.Create(ctx, session.Session{
		ID:         newID,
		Date:       date,
		Courts:     input.Courts,
		MaxPlayers: maxPlayers,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return session.Session{}, fmt.Errorf("create session: %w", err)
	}

	s.logger.InfoContext(ctx, "session created",
		"session_id", created.ID,
		"date", created.Date.Format(session.DateFormat),
		"courts", created.Courts,
		"max_players", created.MaxPlayers,
	)

	return created, nil
}

// Update applies a partial update. Changing courts recomputes max_players.
func (s *SessionService) Update(ctx context.Context, sessionID string, input UpdateSessionInput) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Update")
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return session.Session{}, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	patch := session.Update{
		Cost:     input.Cost,
		Archived: input.Archived,
	}
	if input.Courts != nil {
		maxPlayers, err := session.MaxPlayersForCourts(*input.Courts)
		if err != nil {
			return session.Session{}, err
		}
		patch.Courts = input.Courts
		patch.MaxPlayers = &maxPlayers
	}
	if input.Cost != nil && *input.Cost < 0 {
		return session.Session{}, fmt.Errorf("%w: cost cannot be negative", ErrInvalidInput)
	}
	if patch.IsEmpty() {
		return session.Session{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	updated, exists, err := s.sessionRepo.Update(ctx, sessionID, patch)
	if err != nil {
		return session.Session{}, fmt.Errorf("update session: %w", err)
	}
	if !exists {
		return session.Session{}, fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}

	return updated, nil
}

// Delete removes a session and everything on its roster. Registrants go
// first so a failed session delete cannot orphan them behind a foreign key.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Delete")
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	_, exists, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session for delete: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}

	if err := s.registrantRepo.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session registrants: %w", err)
	}

	deleted, err := s.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}

	s.logger.InfoContext(ctx, "session deleted", "session_id", sessionID)

	return nil
}

// Current returns the earliest upcoming non-archived session, creating the
// next cycle's session with defaults when none exists yet. "Current" is a
// query over dates, not stored state.
func (s *SessionService) Current(ctx context.Context) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Current")
	defer span.End()

	today := dateOnly(s.now())

	current, exists, err := s.sessionRepo.FirstUpcoming(ctx, today)
	if err != nil {
		return session.Session{}, fmt.Errorf("get upcoming session: %w", err)
	}
	if exists {
		return current, nil
	}

	target := upcomingWeekday(today, s.weekday)

	newID, err := s.idGen.NewID()
	if err != nil {
		return session.Session{}, fmt.Errorf("generate session id: %w", err)
	}

	created, err := s.sessionRepo.Create(ctx, session.Session{
		ID:         newID,
		Date:       target,
		Courts:     session.DefaultCourts,
		MaxPlayers: session.DefaultMaxPlayers,
		CreatedAt:  s.now().UTC(),
	})
	if errors.Is(err, session.ErrDuplicateDate) {
		// A concurrent request created it first; read it back.
		current, _, err = s.sessionRepo.GetByDate(ctx, target)
		if err != nil {
			return session.Session{}, fmt.Errorf("get session after create race: %w", err)
		}
		return current, nil
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("create current session: %w", err)
	}

	s.logger.InfoContext(ctx, "current session created on demand",
		"session_id", created.ID,
		"date", created.Date.Format(session.DateFormat),
	)

	return created, nil
}

func (s *SessionService) List(ctx context.Context, includeArchived bool) ([]session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.List")
	defer span.End()

	items, err := s.sessionRepo.List(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return items, nil
}

// Overview lists every session with its roster. Rosters are fetched
// concurrently through a bounded worker pool; results keep the session
// listing order.
func (s *SessionService) Overview(ctx context.Context) ([]SessionOverview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Overview")
	defer span.End()

	sessions, err := s.sessionRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list sessions for overview: %w", err)
	}
	if len(sessions) == 0 {
		return []SessionOverview{}, nil
	}

	workerCount := overviewWorkerCount
	if len(sessions) < workerCount {
		workerCount = len(sessions)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create overview worker pool: %w", err)
	}
	defer pool.Release()

	out := make([]SessionOverview, len(sessions))
	errs := make([]error, len(sessions))

	var workers sync.WaitGroup
	for i, sess := range sessions {
		i, sess := i, sess
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			out[i], errs[i] = s.buildOverview(ctx, sess)
		}); err != nil {
			workers.Done()
			errs[i] = fmt.Errorf("submit overview task: %w", err)
		}
	}
	workers.Wait()

	for _, taskErr := range errs {
		if taskErr != nil {
			return nil, taskErr
		}
	}

	return out, nil
}

func (s *SessionService) buildOverview(ctx context.Context, sess session.Session) (SessionOverview, error) {
	main, err := s.registrantRepo.ListBySession(ctx, sess.ID, false)
	if err != nil {
		return SessionOverview{}, fmt.Errorf("list main roster for overview: %w", err)
	}
	waitlist, err := s.registrantRepo.ListBySession(ctx, sess.ID, true)
	if err != nil {
		return SessionOverview{}, fmt.Errorf("list waitlist for overview: %w", err)
	}

	paidCount := 0
	for _, r := range main {
		if r.Paid {
			paidCount++
		}
	}

	return SessionOverview{
		Session:       sess,
		Main:          redactAll(main),
		Waitlist:      redactAll(waitlist),
		PaidCount:     paidCount,
		CostPerPlayer: sess.CostPerPlayer(len(main)),
	}, nil
}
