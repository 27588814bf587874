package session

import (
	"errors"
	"fmt"
	"time"
)

// DateFormat is the wire and storage format for session dates.
const DateFormat = "2006-01-02"

const (
	DefaultCourts     = 2
	DefaultMaxPlayers = 14
)

var (
	ErrDuplicateDate         = errors.New("a session already exists for that date")
	ErrUnsupportedCourtCount = errors.New("court count must be 2 or 3")
)

// Session is one scheduled occurrence of the recurring event. Date is a
// calendar date held at midnight UTC.
type Session struct {
	ID         string
	Date       time.Time
	Courts     int
	MaxPlayers int
	Cost       float64
	Archived   bool
	CreatedAt  time.Time
}

func (s Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.Date.IsZero() {
		return fmt.Errorf("session date is required")
	}
	if _, err := MaxPlayersForCourts(s.Courts); err != nil {
		return err
	}
	return nil
}

// MaxPlayersForCourts derives capacity from the court count: two courts hold
// fourteen players, three hold twenty. Other counts are not supported.
func MaxPlayersForCourts(courts int) (int, error) {
	switch courts {
	case 2:
		return 14, nil
	case 3:
		return 20, nil
	default:
		return 0, fmt.Errorf("%w: got %d", ErrUnsupportedCourtCount, courts)
	}
}

// CostPerPlayer splits the session cost across the main list. Zero when
// either the cost or the main-list size is not positive.
func (s Session) CostPerPlayer(mainListSize int) float64 {
	if s.Cost <= 0 || mainListSize <= 0 {
		return 0
	}
	return s.Cost / float64(mainListSize)
}

// Update is a partial update: a set pointer means "apply this change".
// MaxPlayers is derived, never supplied by callers; the service fills it in
// whenever Courts changes.
type Update struct {
	Courts     *int
	MaxPlayers *int
	Cost       *float64
	Archived   *bool
}

func (u Update) IsEmpty() bool {
	return u.Courts == nil && u.MaxPlayers == nil && u.Cost == nil && u.Archived == nil
}
