package memory

import (
	"context"
	"time"

	"github.com/wiratama/courtside/internal/domain/registrant"
	"github.com/wiratama/courtside/internal/domain/session"
)

const SeedSessionID = "seed-session-001"

// Seed loads one upcoming session with a partially filled roster, for demo
// mode and local development against the in-memory backend.
func Seed(sessions *SessionRepository, registrants *RegistrantRepository, weekday time.Weekday) {
	ctx := context.Background()

	now := time.Now().UTC()
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)

	_, _ = sessions.Create(ctx, session.Session{
		ID:         SeedSessionID,
		Date:       date,
		Courts:     session.DefaultCourts,
		MaxPlayers: session.DefaultMaxPlayers,
		Cost:       70,
		CreatedAt:  now,
	})

	names := []string{"Aldi", "Bima", "Citra", "Dewi", "Eka"}
	for i, name := range names {
		_, _ = registrants.Insert(ctx, registrant.Registrant{
			ID:         "seed-registrant-" + name,
			SessionID:  SeedSessionID,
			Name:       name,
			PIN:        "0000",
			Position:   i + 1,
			Waitlisted: false,
			Paid:       i%2 == 0,
			SignedUpAt: now,
		})
	}
}
