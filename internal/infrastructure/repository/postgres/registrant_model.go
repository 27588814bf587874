package postgres

import (
	"time"

	"github.com/wiratama/courtside/internal/domain/registrant"
)

type registrantTableModel struct {
	ID         string    `db:"id"`
	SessionID  string    `db:"session_id"`
	Name       string    `db:"name"`
	PIN        string    `db:"pin"`
	Position   int       `db:"position"`
	Waitlisted bool      `db:"waitlisted"`
	Paid       bool      `db:"paid"`
	SignedUpAt time.Time `db:"signed_up_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type registrantInsertModel struct {
	ID         string `db:"id"`
	SessionID  string `db:"session_id"`
	Name       string `db:"name"`
	PIN        string `db:"pin"`
	Position   int    `db:"position"`
	Waitlisted bool   `db:"waitlisted"`
	Paid       bool   `db:"paid"`
}

func (m registrantTableModel) toDomain() registrant.Registrant {
	return registrant.Registrant{
		ID:         m.ID,
		SessionID:  m.SessionID,
		Name:       m.Name,
		PIN:        m.PIN,
		Position:   m.Position,
		Waitlisted: m.Waitlisted,
		Paid:       m.Paid,
		SignedUpAt: m.SignedUpAt,
	}
}
