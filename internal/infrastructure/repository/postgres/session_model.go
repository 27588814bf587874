package postgres

import (
	"time"

	"github.com/wiratama/courtside/internal/domain/session"
)

type sessionTableModel struct {
	ID         string    `db:"id"`
	Date       time.Time `db:"session_date"`
	Courts     int       `db:"courts"`
	MaxPlayers int       `db:"max_players"`
	Cost       float64   `db:"cost"`
	Archived   bool      `db:"archived"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type sessionInsertModel struct {
	ID         string    `db:"id"`
	Date       time.Time `db:"session_date"`
	Courts     int       `db:"courts"`
	MaxPlayers int       `db:"max_players"`
	Cost       float64   `db:"cost"`
	Archived   bool      `db:"archived"`
}

func (m sessionTableModel) toDomain() session.Session {
	return session.Session{
		ID:         m.ID,
		Date:       m.Date.UTC(),
		Courts:     m.Courts,
		MaxPlayers: m.MaxPlayers,
		Cost:       m.Cost,
		Archived:   m.Archived,
		CreatedAt:  m.CreatedAt,
	}
}
