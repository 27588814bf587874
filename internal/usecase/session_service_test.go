package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/wiratama/courtside/internal/domain/session"
	"github.com/wiratama/courtside/internal/infrastructure/repository/memory"
	"github.com/wiratama/courtside/internal/platform/logging"
	"github.com/wiratama/courtside/internal/platform/sessionlock"
)

type sessionFixture struct {
	sessions    *memory.SessionRepository
	registrants *memory.RegistrantRepository
	service     *SessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	sessions := memory.NewSessionRepository()
	registrants := memory.NewRegistrantRepository()
	service := NewSessionService(
		sessions,
		registrants,
		sessionlock.New(),
		&seqIDGenerator{prefix: "sess"},
		time.Wednesday,
		logging.NewNop(),
	)

	return &sessionFixture{
		sessions:    sessions,
		registrants: registrants,
		service:     service,
	}
}

func TestSessionService_Create(t *testing.T) {
	f := newSessionFixture(t)

	created, err := f.service.Create(t.Context(), CreateSessionInput{Date: "2026-09-02", Courts: 3})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if created.MaxPlayers != 20 {
		t.Fatalf("3 courts should cap at 20 players, got %d", created.MaxPlayers)
	}
	if !created.Date.Equal(time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", created.Date)
	}

	if _, err := f.service.Create(t.Context(), CreateSessionInput{Date: "2026-09-02", Courts: 2}); !errors.Is(err, session.ErrDuplicateDate) {
		t.Fatalf("expected duplicate date error, got %v", err)
	}
	if _, err := f.service.Create(t.Context(), CreateSessionInput{Date: "2026-09-09", Courts: 4}); !errors.Is(err, session.ErrUnsupportedCourtCount) {
		t.Fatalf("expected unsupported court count error, got %v", err)
	}
	if _, err := f.service.Create(t.Context(), CreateSessionInput{Date: "02/09/2026", Courts: 2}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for bad date, got %v", err)
	}
}

func TestSessionService_Update(t *testing.T) {
	f := newSessionFixture(t)
	created, err := f.service.Create(t.Context(), CreateSessionInput{Date: "2026-09-02", Courts: 2})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	courts := 3
	updated, err := f.service.Update(t.Context(), created.ID, UpdateSessionInput{Courts: &courts})
	if err != nil {
		t.Fatalf("update courts: %v", err)
	}
	if updated.Courts != 3 || updated.MaxPlayers != 20 {
		t.Fatalf("changing courts must recompute capacity, got courts=%d max=%d", updated.Courts, updated.MaxPlayers)
	}

	cost := 70.0
	archived := true
	updated, err = f.service.Update(t.Context(), created.ID, UpdateSessionInput{Cost: &cost, Archived: &archived})
	if err != nil {
		t.Fatalf("update cost and archive: %v", err)
	}
	if updated.Cost != 70.0 || !updated.Archived {
		t.Fatalf("unexpected update result: cost=%v archived=%v", updated.Cost, updated.Archived)
	}

	badCourts := 5
	if _, err := f.service.Update(t.Context(), created.ID, UpdateSessionInput{Courts: &badCourts}); !errors.Is(err, session.ErrUnsupportedCourtCount) {
		t.Fatalf("expected unsupported court count error, got %v", err)
	}
	negativeCost := -1.0
	if _, err := f.service.Update(t.Context(), created.ID, UpdateSessionInput{Cost: &negativeCost}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative cost, got %v", err)
	}
	if _, err := f.service.Update(t.Context(), created.ID, UpdateSessionInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty patch, got %v", err)
	}
	if _, err := f.service.Update(t.Context(), "missing", UpdateSessionInput{Cost: &cost}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionService_Delete_RemovesRoster(t *testing.T) {
	f := newSessionFixture(t)
	created, err := f.service.Create(t.Context(), CreateSessionInput{Date: "2026-09-02", Courts: 2})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	roster := NewRosterService(f.sessions, f.registrants, sessionlock.New(), &seqIDGenerator{prefix: "reg"}, logging.NewNop())
	if _, err := roster.Signup(t.Context(), SignupInput{SessionID: created.ID, Name: "Ayu", PIN: "1234"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := f.service.Delete(t.Context(), created.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	count, err := f.registrants.Count(t.Context(), created.ID, false)
	if err != nil {
		t.Fatalf("count registrants: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected registrants removed with the session, got %d", count)
	}

	if err := f.service.Delete(t.Context(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestSessionService_Current_CreatesOnDemand(t *testing.T) {
	f := newSessionFixture(t)

	// A Monday; the configured session day is Wednesday two days later.
	f.service.now = func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }

	current, err := f.service.Current(t.Context())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got := current.Date.Format(session.DateFormat); got != "2026-09-02" {
		t.Fatalf("expected next Wednesday 2026-09-02, got %s", got)
	}
	if current.Courts != session.DefaultCourts || current.MaxPlayers != session.DefaultMaxPlayers {
		t.Fatalf("on-demand session should use defaults, got courts=%d max=%d", current.Courts, current.MaxPlayers)
	}

	again, err := f.service.Current(t.Context())
	if err != nil {
		t.Fatalf("current second call: %v", err)
	}
	if again.ID != current.ID {
		t.Fatalf("second call should return the same session, got %s and %s", current.ID, again.ID)
	}
}

func TestSessionService_Current_ReturnsEarliestUpcoming(t *testing.T) {
	f := newSessionFixture(t)
	f.service.now = func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }

	if _, err := f.service.Create(t.Context(), CreateSessionInput{Date: "2026-09-09", Courts: 2}); err != nil {
		t.Fatalf("create later session: %v", err)
	}
	near, err := f.service.Create(t.Context(), CreateSessionInput{Date: "2026-09-02", Courts: 2})
	if err != nil {
		t.Fatalf("create near session: %v", err)
	}

	current, err := f.service.Current(t.Context())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != near.ID {
		t.Fatalf("expected earliest upcoming session %s, got %s", near.ID, current.ID)
	}
}

func TestSessionService_Overview(t *testing.T) {
	f := newSessionFixture(t)
	created, err := f.service.Create(t.Context(), CreateSessionInput{Date: "2026-09-02", Courts: 2})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	cost := 70.0
	if _, err := f.service.Update(t.Context(), created.ID, UpdateSessionInput{Cost: &cost}); err != nil {
		t.Fatalf("set cost: %v", err)
	}

	roster := NewRosterService(f.sessions, f.registrants, sessionlock.New(), &seqIDGenerator{prefix: "reg"}, logging.NewNop())
	first, err := roster.Signup(t.Context(), SignupInput{SessionID: created.ID, Name: "Ayu", PIN: "1234"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := roster.Signup(t.Context(), SignupInput{SessionID: created.ID, Name: "Bima", PIN: "1234"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := roster.SetPaid(t.Context(), first.ID, true); err != nil {
		t.Fatalf("set paid: %v", err)
	}

	overviews, err := f.service.Overview(t.Context())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overviews) != 1 {
		t.Fatalf("expected 1 overview, got %d", len(overviews))
	}

	ov := overviews[0]
	if len(ov.Main) != 2 || len(ov.Waitlist) != 0 {
		t.Fatalf("unexpected roster sizes: main=%d waitlist=%d", len(ov.Main), len(ov.Waitlist))
	}
	if ov.PaidCount != 1 {
		t.Fatalf("expected 1 paid, got %d", ov.PaidCount)
	}
	if ov.CostPerPlayer != 35.0 {
		t.Fatalf("expected cost split across 2 players = 35, got %v", ov.CostPerPlayer)
	}
	for _, r := range ov.Main {
		if r.PIN != "" {
			t.Fatal("overview must not carry pins")
		}
	}
}
