package registrant

import "context"

// Repository is the roster store contract. All position bookkeeping is scoped
// to one (session, list) pair; callers are expected to serialize mutations for
// a given session.
type Repository interface {
	// ListBySession returns one list of a session's roster ordered by
	// ascending position.
	ListBySession(ctx context.Context, sessionID string, waitlisted bool) ([]Registrant, error)
	GetByID(ctx context.Context, registrantID string) (Registrant, bool, error)
	// Insert appends the registrant; the caller decides list and position.
	Insert(ctx context.Context, r Registrant) (Registrant, error)
	Delete(ctx context.Context, registrantID string) (bool, error)
	SetPaid(ctx context.Context, registrantID string, paid bool) (Registrant, bool, error)
	// SetListAndPosition moves a registrant between lists and/or renumbers
	// it.
	SetListAndPosition(ctx context.Context, registrantID string, waitlisted bool, position int) (bool, error)
	// Renumber rewrites positions 1..len(orderedIDs) for one list in the
	// given order, in a single statement where the store supports it.
	Renumber(ctx context.Context, sessionID string, waitlisted bool, orderedIDs []string) error
	Count(ctx context.Context, sessionID string, waitlisted bool) (int, error)
	// MaxPosition returns 0 for an empty list.
	MaxPosition(ctx context.Context, sessionID string, waitlisted bool) (int, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}
