package usecase

import (
	"testing"
	"time"

	"github.com/wiratama/courtside/internal/domain/session"
	"github.com/wiratama/courtside/internal/infrastructure/repository/memory"
	"github.com/wiratama/courtside/internal/platform/logging"
)

func TestRolloverService_Run(t *testing.T) {
	sessions := memory.NewSessionRepository()
	service := NewRolloverService(sessions, &seqIDGenerator{prefix: "sess"}, time.Wednesday, logging.NewNop())

	// Thursday right after the 2026-09-02 session.
	service.now = func() time.Time { return time.Date(2026, 9, 3, 3, 0, 0, 0, time.UTC) }

	past, err := sessions.Create(t.Context(), session.Session{
		ID:         "past",
		Date:       time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Courts:     2,
		MaxPlayers: 14,
	})
	if err != nil {
		t.Fatalf("create past session: %v", err)
	}

	result, err := service.Run(t.Context())
	if err != nil {
		t.Fatalf("rollover run: %v", err)
	}

	if result.ArchivedCount != 1 {
		t.Fatalf("expected 1 archived session, got %d", result.ArchivedCount)
	}
	if result.EnsuredDate != "2026-09-09" {
		t.Fatalf("expected next Wednesday 2026-09-09, got %s", result.EnsuredDate)
	}
	if !result.Created {
		t.Fatal("expected next session to be created")
	}

	archivedSession, _, err := sessions.GetByID(t.Context(), past.ID)
	if err != nil {
		t.Fatalf("get archived session: %v", err)
	}
	if !archivedSession.Archived {
		t.Fatal("past session should be archived")
	}

	next, exists, err := sessions.GetByDate(t.Context(), time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC))
	if err != nil || !exists {
		t.Fatalf("next session missing: exists=%t err=%v", exists, err)
	}
	if next.Courts != session.DefaultCourts || next.MaxPlayers != session.DefaultMaxPlayers {
		t.Fatalf("next session should use defaults, got courts=%d max=%d", next.Courts, next.MaxPlayers)
	}
}

func TestRolloverService_Run_Idempotent(t *testing.T) {
	sessions := memory.NewSessionRepository()
	service := NewRolloverService(sessions, &seqIDGenerator{prefix: "sess"}, time.Wednesday, logging.NewNop())
	service.now = func() time.Time { return time.Date(2026, 9, 3, 3, 0, 0, 0, time.UTC) }

	if _, err := service.Run(t.Context()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	result, err := service.Run(t.Context())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.ArchivedCount != 0 {
		t.Fatalf("second run should archive nothing, got %d", result.ArchivedCount)
	}
	if result.Created {
		t.Fatal("second run must not create a duplicate session")
	}

	all, err := sessions.List(t.Context(), true)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one session, got %d", len(all))
	}
}

func TestRolloverService_Run_OnSessionDaySchedulesNextWeek(t *testing.T) {
	sessions := memory.NewSessionRepository()
	service := NewRolloverService(sessions, &seqIDGenerator{prefix: "sess"}, time.Wednesday, logging.NewNop())

	// Running on the session day itself must target the following week and
	// leave today's session unarchived.
	service.now = func() time.Time { return time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC) }

	if _, err := sessions.Create(t.Context(), session.Session{
		ID:         "today",
		Date:       time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Courts:     2,
		MaxPlayers: 14,
	}); err != nil {
		t.Fatalf("create today's session: %v", err)
	}

	result, err := service.Run(t.Context())
	if err != nil {
		t.Fatalf("rollover run: %v", err)
	}
	if result.ArchivedCount != 0 {
		t.Fatalf("today's session must not be archived, got %d", result.ArchivedCount)
	}
	if result.EnsuredDate != "2026-09-09" {
		t.Fatalf("expected following Wednesday 2026-09-09, got %s", result.EnsuredDate)
	}

	today, _, err := sessions.GetByID(t.Context(), "today")
	if err != nil {
		t.Fatalf("get today's session: %v", err)
	}
	if today.Archived {
		t.Fatal("session on the current day should stay active")
	}
}
