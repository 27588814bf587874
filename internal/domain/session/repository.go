package session

import (
	"context"
	"time"
)

// Repository describes session persistence needs from use cases.
type Repository interface {
	// Create persists a new session; ErrDuplicateDate when one already
	// exists for the same date.
	Create(ctx context.Context, s Session) (Session, error)
	GetByID(ctx context.Context, sessionID string) (Session, bool, error)
	GetByDate(ctx context.Context, date time.Time) (Session, bool, error)
	// FirstUpcoming returns the earliest non-archived session with
	// date >= from.
	FirstUpcoming(ctx context.Context, from time.Time) (Session, bool, error)
	// List returns sessions newest-date first; archived ones only when
	// includeArchived is set.
	List(ctx context.Context, includeArchived bool) ([]Session, error)
	Update(ctx context.Context, sessionID string, u Update) (Session, bool, error)
	// ArchiveBefore marks every non-archived session older than date as
	// archived and reports how many rows changed.
	ArchiveBefore(ctx context.Context, date time.Time) (int64, error)
	Delete(ctx context.Context, sessionID string) (bool, error)
}
