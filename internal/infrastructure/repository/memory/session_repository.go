package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wiratama/courtside/internal/domain/session"
)

// SessionRepository is an in-memory session.Repository used by tests and demo
// mode.
type SessionRepository struct {
	mu    sync.RWMutex
	items map[string]session.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{items: make(map[string]session.Session)}
}

func (r *SessionRepository) Create(_ context.Context, s session.Session) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if sameDate(existing.Date, s.Date) {
			return session.Session{}, session.ErrDuplicateDate
		}
	}

	r.items[s.ID] = s
	return s, nil
}

func (r *SessionRepository) GetByID(_ context.Context, sessionID string) (session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[sessionID]
	return item, ok, nil
}

func (r *SessionRepository) GetByDate(_ context.Context, date time.Time) (session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if sameDate(item.Date, date) {
			return item, true, nil
		}
	}
	return session.Session{}, false, nil
}

func (r *SessionRepository) FirstUpcoming(_ context.Context, from time.Time) (session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best session.Session
	found := false
	for _, item := range r.items {
		if item.Archived || item.Date.Before(from) {
			continue
		}
		if !found || item.Date.Before(best.Date) {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (r *SessionRepository) List(_ context.Context, includeArchived bool) ([]session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]session.Session, 0, len(r.items))
	for _, item := range r.items {
		if !includeArchived && item.Archived {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (r *SessionRepository) Update(_ context.Context, sessionID string, u session.Update) (session.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[sessionID]
	if !ok {
		return session.Session{}, false, nil
	}

	if u.Courts != nil {
		item.Courts = *u.Courts
	}
	if u.MaxPlayers != nil {
		item.MaxPlayers = *u.MaxPlayers
	}
	if u.Cost != nil {
		item.Cost = *u.Cost
	}
	if u.Archived != nil {
		item.Archived = *u.Archived
	}

	r.items[sessionID] = item
	return item, true, nil
}

func (r *SessionRepository) ArchiveBefore(_ context.Context, date time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var archived int64
	for key, item := range r.items {
		if item.Archived || !item.Date.Before(date) {
			continue
		}
		item.Archived = true
		r.items[key] = item
		archived++
	}
	return archived, nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[sessionID]; !ok {
		return false, nil
	}
	delete(r.items, sessionID)
	return true, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
