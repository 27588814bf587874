package usecase

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wiratama/courtside/internal/domain/session"
	"github.com/wiratama/courtside/internal/infrastructure/repository/memory"
	"github.com/wiratama/courtside/internal/platform/logging"
	"github.com/wiratama/courtside/internal/platform/sessionlock"
)

type seqIDGenerator struct {
	prefix string
	n      int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n), nil
}

type rosterFixture struct {
	sessions    *memory.SessionRepository
	registrants *memory.RegistrantRepository
	service     *RosterService
}

func newRosterFixture(t *testing.T) *rosterFixture {
	t.Helper()

	sessions := memory.NewSessionRepository()
	registrants := memory.NewRegistrantRepository()
	service := NewRosterService(
		sessions,
		registrants,
		sessionlock.New(),
		&seqIDGenerator{prefix: "reg"},
		logging.NewNop(),
	)

	return &rosterFixture{
		sessions:    sessions,
		registrants: registrants,
		service:     service,
	}
}

func (f *rosterFixture) createSession(t *testing.T, id string, maxPlayers int) session.Session {
	t.Helper()

	created, err := f.sessions.Create(t.Context(), session.Session{
		ID:         id,
		Date:       time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Courts:     2,
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return created
}

func (f *rosterFixture) signup(t *testing.T, sessionID, name string) string {
	t.Helper()

	created, err := f.service.Signup(t.Context(), SignupInput{
		SessionID: sessionID,
		Name:      name,
		PIN:       "1234",
	})
	if err != nil {
		t.Fatalf("signup %s: %v", name, err)
	}
	return created.ID
}

func TestRosterService_Signup_FillsMainThenWaitlists(t *testing.T) {
	f := newRosterFixture(t)
	f.createSession(t, "sess-1", 14)

	for i := 1; i <= 14; i++ {
		created, err := f.service.Signup(t.Context(), SignupInput{
			SessionID: "sess-1",
			Name:      fmt.Sprintf("Player %02d", i),
			PIN:       "1234",
		})
		if err != nil {
			t.Fatalf("signup %d: %v", i, err)
		}
		if created.Waitlisted {
			t.Fatalf("entrant %d should be on the main list", i)
		}
		if created.Position != i {
			t.Fatalf("entrant %d expected position %d, got %d", i, i, created.Position)
		}
		if created.PIN != "" {
			t.Fatalf("signup response should not carry the pin")
		}
	}

	overflow, err := f.service.Signup(t.Context(), SignupInput{
		SessionID: "sess-1",
		Name:      "Overflow",
		PIN:       "1234",
	})
	if err != nil {
		t.Fatalf("overflow signup: %v", err)
	}
	if !overflow.Waitlisted {
		t.Fatal("15th entrant should be waitlisted")
	}
	if overflow.Position != 1 {
		t.Fatalf("waitlist starts at 1, got %d", overflow.Position)
	}
}

func TestRosterService_Signup_Validation(t *testing.T) {
	f := newRosterFixture(t)
	f.createSession(t, "sess-1", 14)

	cases := []struct {
		name  string
		input SignupInput
	}{
		{"missing name", SignupInput{SessionID: "sess-1", PIN: "1234"}},
		{"short pin", SignupInput{SessionID: "sess-1", Name: "Ayu", PIN: "12"}},
		{"alpha pin", SignupInput{SessionID: "sess-1", Name: "Ayu", PIN: "abcd"}},
		{"missing session", SignupInput{Name: "Ayu", PIN: "1234"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.service.Signup(t.Context(), tc.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input error, got %v", err)
			}
		})
	}

	if _, err := f.service.Signup(t.Context(), SignupInput{
		SessionID: "missing",
		Name:      "Ayu",
		PIN:       "1234",
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown session, got %v", err)
	}
}

func TestRosterService_Cancel_RequiresMatchingPIN(t *testing.T) {
	f := newRosterFixture(t)
	f.createSession(t, "sess-1", 14)
	id := f.signup(t, "sess-1", "Ayu")

	err := f.service.Cancel(t.Context(), CancelInput{RegistrantID: id, PIN: "0000"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong pin, got %v", err)
	}

	err = f.service.Cancel(t.Context(), CancelInput{RegistrantID: id})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing pin, got %v", err)
	}

	if err := f.service.Cancel(t.Context(), CancelInput{RegistrantID: id, PIN: "1234"}); err != nil {
		t.Fatalf("cancel with matching pin: %v", err)
	}

	err = f.service.Cancel(t.Context(), CancelInput{RegistrantID: id, PIN: "1234"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after cancel, got %v", err)
	}
}

func TestRosterService_Cancel_AdminOverrideSkipsPIN(t *testing.T) {
	f := newRosterFixture(t)
	f.createSession(t, "sess-1", 14)
	id := f.signup(t, "sess-1", "Ayu")

	if err := f.service.Cancel(t.Context(), CancelInput{RegistrantID: id, AdminOverride: true}); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestRosterService_Cancel_PromotesWaitlistHead(t *testing.T) {
	f := newRosterFixture(t)
	f.createSession(t, "sess-1", 14)

	mainIDs := make([]string, 0, 14)
	for i := 1; i <= 14; i++ {
		mainIDs = append(mainIDs, f.signup(t, "sess-1", fmt.Sprintf("Main %02d", i)))
	}
	waitIDs := []string{
		f.signup(t, "sess-1", "Wait 01"),
		f.signup(t, "sess-1", "Wait 02"),
	}

	if err := f.service.Cancel(t.Context(), CancelInput{RegistrantID: mainIDs[4], PIN: "1234"}); err != nil {
		t.Fatalf("cancel main entry: %v", err)
	}

	roster, err := f.service.Roster(t.Context(), "sess-1")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}

	if len(roster.Main) != 14 {
		t.Fatalf("expected 14 on main list after promotion, got %d", len(roster.Main))
	}
	if len(roster.Waitlist) != 1 {
		t.Fatalf("expected 1 left on waitlist, got %d", len(roster.Waitlist))
	}

	// The promoted head appends after the highest main position; the gap the
	// cancelled entry left is not compacted.
	promoted := roster.Main[len(roster.Main)-1]
	if promoted.ID != waitIDs[0] {
		t.Fatalf("expected waitlist head %s promoted, got %s", waitIDs[0], promoted.ID)
	}
	if promoted.Position != 15 {
		t.Fatalf("expected promoted position 15, got %d", promoted.Position)
	}

	if roster.Waitlist[0].ID != waitIDs[1] || roster.Waitlist[0].Position != 1 {
		t.Fatalf("expected remaining waitlist entry renumbered to 1, got id=%s position=%d",
			roster.Waitlist[0].ID, roster.Waitlist[0].Position)
	}
}

func TestRosterService_Cancel_WaitlistEntryCompactsWaitlist(t *testing.T) {
	f := newRosterFixture(t)
	f.createSession(t, "sess-1", 2)

	f.signup(t, "sess-1", "Main 01")
	f.signup(t, "sess-1", "Main 02")
	w1 := f.signup(t, "sess-1", "Wait 01")
	w2 := f.signup(t, "sess-1", "Wait 02")
	w3 := f.signup(t, "sess-1", "Wait 03")

	if err := f.service.Cancel(t.Context(), CancelInput{RegistrantID: w1, PIN: "1234"}); err != nil {
		t.Fatalf("cancel waitlist entry: %v", err)
	}

	roster, err := f.service.Roster(t.Context(), "sess-1")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}

	if len(roster.Main) != 2 {
		t.Fatalf("cancelling a waitlist entry must not touch the main list, got %d", len(roster.Main))
	}
	if len(roster.Waitlist) != 2 {
		t.Fatalf("expected 2 waitlist entries, got %d", len(roster.Waitlist))
	}
	if roster.Waitlist[0].ID != w2 || roster.Waitlist[0].Position != 1 {
		t.Fatalf("expected %s at waitlist position 1, got %s at %d", w2, roster.Waitlist[0].ID, roster.Waitlist[0].Position)
	}
	if roster.Waitlist[1].ID != w3 || roster.Waitlist[1].Position != 2 {
		t.Fatalf("expected %s at waitlist position 2, got %s at %d", w3, roster.Waitlist[1].ID, roster.Waitlist[1].Position)
	}
}

func TestRosterService_Cancel_NoPromotionIntoShrunkList(t *testing.T) {
	f := newRosterFixture(t)
	f.createSession(t, "sess-1", 14)

	mainIDs := make([]string, 0, 14)
	for i := 1; i <= 14; i++ {
		mainIDs = append(mainIDs, f.signup(t, "sess-1", fmt.Sprintf("Main %02d", i)))
	}
	f.signup(t, "sess-1", "Wait 01")

	// Capacity was lowered after signups; the list is now overfull.
	lowered := 10
	if _, _, err := f.sessions.Update(t.Context(), "sess-1", session.Update{MaxPlayers: &lowered}); err != nil {
		t.Fatalf("shrink session capacity: %v", err)
	}

	if err := f.service.Cancel(t.Context(), CancelInput{RegistrantID: mainIDs[0], PIN: "1234"}); err != nil {
		t.Fatalf("cancel main entry: %v", err)
	}

	roster, err := f.service.Roster(t.Context(), "sess-1")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster.Main) != 13 {
		t.Fatalf("expected 13 on main list, got %d", len(roster.Main))
	}
	if len(roster.Waitlist) != 1 {
		t.Fatalf("still-full list must not promote, got %d waitlisted", len(roster.Waitlist))
	}
}

func TestRosterService_Promote(t *testing.T) {
	f := newRosterFixture(t)
	f.createSession(t, "sess-1", 2)

	m1 := f.signup(t, "sess-1", "Main 01")
	f.signup(t, "sess-1", "Main 02")
	w1 := f.signup(t, "sess-1", "Wait 01")
	w2 := f.signup(t, "sess-1", "Wait 02")

	promoted, err := f.service.Promote(t.Context(), w1)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Waitlisted {
		t.Fatal("promoted registrant should be on the main list")
	}
	if promoted.Position != 3 {
		t.Fatalf("promotion appends past capacity, expected position 3 got %d", promoted.Position)
	}

	roster, err := f.service.Roster(t.Context(), "sess-1")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster.Main) != 3 {
		t.Fatalf("expected overfilled main list of 3, got %d", len(roster.Main))
	}
	if roster.Waitlist[0].ID != w2 || roster.Waitlist[0].Position != 1 {
		t.Fatalf("expected %s renumbered to waitlist 1, got %s at %d", w2, roster.Waitlist[0].ID, roster.Waitlist[0].Position)
	}

	if _, err := f.service.Promote(t.Context(), m1); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state promoting a main-list registrant, got %v", err)
	}
	if _, err := f.service.Promote(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRosterService_SetPaid(t *testing.T) {
	f := newRosterFixture(t)
	f.createSession(t, "sess-1", 14)
	id := f.signup(t, "sess-1", "Ayu")

	updated, err := f.service.SetPaid(t.Context(), id, true)
	if err != nil {
		t.Fatalf("set paid: %v", err)
	}
	if !updated.Paid {
		t.Fatal("expected paid flag set")
	}
	if updated.PIN != "" {
		t.Fatal("paid response should not carry the pin")
	}

	if _, err := f.service.SetPaid(t.Context(), "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRosterService_Roster_UnknownSession(t *testing.T) {
	f := newRosterFixture(t)

	if _, err := f.service.Roster(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
