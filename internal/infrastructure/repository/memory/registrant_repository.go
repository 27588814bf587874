package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wiratama/courtside/internal/domain/registrant"
)

// RegistrantRepository is an in-memory registrant.Repository used by tests
// and demo mode.
type RegistrantRepository struct {
	mu    sync.RWMutex
	items map[string]registrant.Registrant
}

func NewRegistrantRepository() *RegistrantRepository {
	return &RegistrantRepository{items: make(map[string]registrant.Registrant)}
}

func (r *RegistrantRepository) ListBySession(_ context.Context, sessionID string, waitlisted bool) ([]registrant.Registrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]registrant.Registrant, 0)
	for _, item := range r.items {
		if item.SessionID == sessionID && item.Waitlisted == waitlisted {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r *RegistrantRepository) GetByID(_ context.Context, registrantID string) (registrant.Registrant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[registrantID]
	return item, ok, nil
}

func (r *RegistrantRepository) Insert(_ context.Context, item registrant.Registrant) (registrant.Registrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return item, nil
}

func (r *RegistrantRepository) Delete(_ context.Context, registrantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[registrantID]; !ok {
		return false, nil
	}
	delete(r.items, registrantID)
	return true, nil
}

func (r *RegistrantRepository) SetPaid(_ context.Context, registrantID string, paid bool) (registrant.Registrant, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[registrantID]
	if !ok {
		return registrant.Registrant{}, false, nil
	}
	item.Paid = paid
	r.items[registrantID] = item
	return item, true, nil
}

func (r *RegistrantRepository) SetListAndPosition(_ context.Context, registrantID string, waitlisted bool, position int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[registrantID]
	if !ok {
		return false, nil
	}
	item.Waitlisted = waitlisted
	item.Position = position
	r.items[registrantID] = item
	return true, nil
}

func (r *RegistrantRepository) Renumber(_ context.Context, sessionID string, waitlisted bool, orderedIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, registrantID := range orderedIDs {
		item, ok := r.items[registrantID]
		if !ok || item.SessionID != sessionID || item.Waitlisted != waitlisted {
			continue
		}
		item.Position = i + 1
		r.items[registrantID] = item
	}
	return nil
}

func (r *RegistrantRepository) Count(_ context.Context, sessionID string, waitlisted bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, item := range r.items {
		if item.SessionID == sessionID && item.Waitlisted == waitlisted {
			count++
		}
	}
	return count, nil
}

func (r *RegistrantRepository) MaxPosition(_ context.Context, sessionID string, waitlisted bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	maxPos := 0
	for _, item := range r.items {
		if item.SessionID == sessionID && item.Waitlisted == waitlisted && item.Position > maxPos {
			maxPos = item.Position
		}
	}
	return maxPos, nil
}

func (r *RegistrantRepository) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.items {
		if item.SessionID == sessionID {
			delete(r.items, key)
		}
	}
	return nil
}
