package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wiratama/courtside/internal/domain/registrant"
	"github.com/wiratama/courtside/internal/domain/session"
	"github.com/wiratama/courtside/internal/platform/id"
	"github.com/wiratama/courtside/internal/platform/logging"
	"github.com/wiratama/courtside/internal/platform/sessionlock"
)

type SignupInput struct {
	SessionID string
	Name      string
	PIN       string
}

type CancelInput struct {
	RegistrantID string
	PIN          string
	// AdminOverride skips PIN verification; set only for callers that
	// passed the admin gate.
	AdminOverride bool
}

// Roster is one session's ordered main list and waitlist.
type Roster struct {
	Main     []registrant.Registrant
	Waitlist []registrant.Registrant
}

// RosterService owns capacity-aware admission, cancellation with
// auto-promotion, and explicit promotion. Every mutation runs under the
// per-session lock so capacity checks and renumbering are observed atomically
// by other operations on the same session.
type RosterService struct {
	sessionRepo    session.Repository
	registrantRepo registrant.Repository
	locks          *sessionlock.Keyed
	idGen          id.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewRosterService(
	sessionRepo session.Repository,
	registrantRepo registrant.Repository,
	locks *sessionlock.Keyed,
	idGen id.Generator,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RosterService{
		sessionRepo:    sessionRepo,
		registrantRepo: registrantRepo,
		locks:          locks,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

// Signup admits a new registrant: main list while there is capacity, waitlist
// once the main list is full. Entrants always append at the end of the target
// list.
func (s *RosterService) Signup(ctx context.Context, input SignupInput) (registrant.Registrant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Signup")
	defer span.End()

	input.SessionID = strings.TrimSpace(input.SessionID)
	input.Name = strings.TrimSpace(input.Name)

	if input.SessionID == "" {
		return registrant.Registrant{}, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return registrant.Registrant{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(input.Name) > registrant.MaxNameLength {
		return registrant.Registrant{}, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, registrant.MaxNameLength)
	}
	if !registrant.ValidPIN(input.PIN) {
		return registrant.Registrant{}, fmt.Errorf("%w: pin must be exactly 4 digits", ErrInvalidInput)
	}

	unlock := s.locks.Lock(input.SessionID)
	defer unlock()

	sess, exists, err := s.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("get session for signup: %w", err)
	}
	if !exists {
		return registrant.Registrant{}, fmt.Errorf("%w: session=%s", ErrNotFound, input.SessionID)
	}

	mainCount, err := s.registrantRepo.Count(ctx, sess.ID, false)
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("count main list: %w", err)
	}

	waitlisted := mainCount >= sess.MaxPlayers

	maxPosition, err := s.registrantRepo.MaxPosition(ctx, sess.ID, waitlisted)
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("get max position: %w", err)
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("generate registrant id: %w", err)
	}

	item := registrant.Registrant{
		ID:         newID,
		SessionID:  sess.ID,
		Name:       input.Name,
		PIN:        input.PIN,
		Position:   maxPosition + 1,
		Waitlisted: waitlisted,
		SignedUpAt: s.now().UTC(),
	}

	created, err := s.registrantRepo.Insert(ctx, item)
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("insert registrant: %w", err)
	}

	s.logger.InfoContext(ctx, "registrant signed up",
		"session_id", sess.ID,
		"registrant_id", created.ID,
		"waitlisted", created.Waitlisted,
		"position", created.Position,
	)

	return created.Redacted(), nil
}

// Cancel removes a registrant. Self-service callers must present the matching
// PIN; admin callers bypass it. Removing a main-list registrant promotes the
// head of the waitlist when the main list still has room afterwards.
func (s *RosterService) Cancel(ctx context.Context, input CancelInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Cancel")
	defer span.End()

	input.RegistrantID = strings.TrimSpace(input.RegistrantID)
	if input.RegistrantID == "" {
		return fmt.Errorf("%w: registrant_id is required", ErrInvalidInput)
	}

	item, exists, err := s.registrantRepo.GetByID(ctx, input.RegistrantID)
	if err != nil {
		return fmt.Errorf("get registrant for cancel: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: registrant=%s", ErrNotFound, input.RegistrantID)
	}

	unlock := s.locks.Lock(item.SessionID)
	defer unlock()

	// Re-read under the session lock; a concurrent cancel may have won.
	item, exists, err = s.registrantRepo.GetByID(ctx, input.RegistrantID)
	if err != nil {
		return fmt.Errorf("get registrant for cancel: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: registrant=%s", ErrNotFound, input.RegistrantID)
	}

	if !input.AdminOverride {
		if input.PIN == "" {
			return fmt.Errorf("%w: pin is required", ErrInvalidInput)
		}
		if item.PIN != input.PIN {
			return fmt.Errorf("%w: pin does not match", ErrUnauthorized)
		}
	}

	deleted, err := s.registrantRepo.Delete(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("delete registrant: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: registrant=%s", ErrNotFound, item.ID)
	}

	s.logger.InfoContext(ctx, "registrant cancelled",
		"session_id", item.SessionID,
		"registrant_id", item.ID,
		"waitlisted", item.Waitlisted,
		"admin_override", input.AdminOverride,
	)

	if item.Waitlisted {
		// Removing a waitlist entry only needs waitlist compaction.
		return s.renumberWaitlist(ctx, item.SessionID)
	}

	return s.promoteNext(ctx, item.SessionID)
}

// Promote is the explicit admin action. It deliberately skips the capacity
// check so an admin can overfill a session.
func (s *RosterService) Promote(ctx context.Context, registrantID string) (registrant.Registrant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Promote")
	defer span.End()

	registrantID = strings.TrimSpace(registrantID)
	if registrantID == "" {
		return registrant.Registrant{}, fmt.Errorf("%w: registrant_id is required", ErrInvalidInput)
	}

	item, exists, err := s.registrantRepo.GetByID(ctx, registrantID)
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("get registrant for promote: %w", err)
	}
	if !exists {
		return registrant.Registrant{}, fmt.Errorf("%w: registrant=%s", ErrNotFound, registrantID)
	}

	unlock := s.locks.Lock(item.SessionID)
	defer unlock()

	item, exists, err = s.registrantRepo.GetByID(ctx, registrantID)
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("get registrant for promote: %w", err)
	}
	if !exists {
		return registrant.Registrant{}, fmt.Errorf("%w: registrant=%s", ErrNotFound, registrantID)
	}
	if !item.Waitlisted {
		return registrant.Registrant{}, fmt.Errorf("%w: registrant %s is not waitlisted", ErrInvalidState, registrantID)
	}

	maxMain, err := s.registrantRepo.MaxPosition(ctx, item.SessionID, false)
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("get max main position: %w", err)
	}

	moved, err := s.registrantRepo.SetListAndPosition(ctx, item.ID, false, maxMain+1)
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("move registrant to main list: %w", err)
	}
	if !moved {
		return registrant.Registrant{}, fmt.Errorf("%w: registrant=%s", ErrNotFound, item.ID)
	}

	if err := s.renumberWaitlist(ctx, item.SessionID); err != nil {
		return registrant.Registrant{}, err
	}

	s.logger.InfoContext(ctx, "registrant promoted",
		"session_id", item.SessionID,
		"registrant_id", item.ID,
		"position", maxMain+1,
	)

	item.Waitlisted = false
	item.Position = maxMain + 1
	return item.Redacted(), nil
}

func (s *RosterService) SetPaid(ctx context.Context, registrantID string, paid bool) (registrant.Registrant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SetPaid")
	defer span.End()

	registrantID = strings.TrimSpace(registrantID)
	if registrantID == "" {
		return registrant.Registrant{}, fmt.Errorf("%w: registrant_id is required", ErrInvalidInput)
	}

	updated, exists, err := s.registrantRepo.SetPaid(ctx, registrantID, paid)
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("set registrant paid: %w", err)
	}
	if !exists {
		return registrant.Registrant{}, fmt.Errorf("%w: registrant=%s", ErrNotFound, registrantID)
	}

	return updated.Redacted(), nil
}

// Roster returns both lists of a session ordered by position.
func (s *RosterService) Roster(ctx context.Context, sessionID string) (Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Roster")
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Roster{}, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	_, exists, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return Roster{}, fmt.Errorf("get session for roster: %w", err)
	}
	if !exists {
		return Roster{}, fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}

	main, err := s.registrantRepo.ListBySession(ctx, sessionID, false)
	if err != nil {
		return Roster{}, fmt.Errorf("list main roster: %w", err)
	}
	waitlist, err := s.registrantRepo.ListBySession(ctx, sessionID, true)
	if err != nil {
		return Roster{}, fmt.Errorf("list waitlist: %w", err)
	}

	return Roster{
		Main:     redactAll(main),
		Waitlist: redactAll(waitlist),
	}, nil
}

// promoteNext moves the lowest-position waitlist entry onto the main list
// when the main list has room, then compacts the waitlist. Promotion appends;
// the gap the cancelled registrant left in the main-list numbering stays.
func (s *RosterService) promoteNext(ctx context.Context, sessionID string) error {
	sess, exists, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session for promotion: %w", err)
	}
	if !exists {
		return nil
	}

	mainCount, err := s.registrantRepo.Count(ctx, sessionID, false)
	if err != nil {
		return fmt.Errorf("count main list: %w", err)
	}
	if mainCount >= sess.MaxPlayers {
		// max_players may have been lowered since signup; never promote
		// into an already-full list.
		return nil
	}

	waitlist, err := s.registrantRepo.ListBySession(ctx, sessionID, true)
	if err != nil {
		return fmt.Errorf("list waitlist: %w", err)
	}
	if len(waitlist) == 0 {
		return nil
	}

	head := waitlist[0]

	maxMain, err := s.registrantRepo.MaxPosition(ctx, sessionID, false)
	if err != nil {
		return fmt.Errorf("get max main position: %w", err)
	}

	moved, err := s.registrantRepo.SetListAndPosition(ctx, head.ID, false, maxMain+1)
	if err != nil {
		return fmt.Errorf("promote waitlist head: %w", err)
	}
	if !moved {
		return nil
	}

	s.logger.InfoContext(ctx, "waitlist registrant auto-promoted",
		"session_id", sessionID,
		"registrant_id", head.ID,
		"position", maxMain+1,
	)

	orderedIDs := make([]string, 0, len(waitlist)-1)
	for _, w := range waitlist[1:] {
		orderedIDs = append(orderedIDs, w.ID)
	}
	if err := s.registrantRepo.Renumber(ctx, sessionID, true, orderedIDs); err != nil {
		return fmt.Errorf("renumber waitlist: %w", err)
	}

	return nil
}

func (s *RosterService) renumberWaitlist(ctx context.Context, sessionID string) error {
	waitlist, err := s.registrantRepo.ListBySession(ctx, sessionID, true)
	if err != nil {
		return fmt.Errorf("list waitlist: %w", err)
	}

	orderedIDs := make([]string, 0, len(waitlist))
	for _, w := range waitlist {
		orderedIDs = append(orderedIDs, w.ID)
	}
	if err := s.registrantRepo.Renumber(ctx, sessionID, true, orderedIDs); err != nil {
		return fmt.Errorf("renumber waitlist: %w", err)
	}

	return nil
}

func redactAll(items []registrant.Registrant) []registrant.Registrant {
	out := make([]registrant.Registrant, 0, len(items))
	for _, item := range items {
		out = append(out, item.Redacted())
	}
	return out
}
