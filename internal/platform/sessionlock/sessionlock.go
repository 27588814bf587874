package sessionlock

import "sync"

// Keyed serializes mutating operations per session ID. Different sessions do
// not contend with each other. Entries are reference counted and removed once
// the last holder releases, so the map does not grow with session history.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for sessionID and returns the matching unlock.
func (k *Keyed) Lock(sessionID string) func() {
	k.mu.Lock()
	e, ok := k.locks[sessionID]
	if !ok {
		e = &entry{}
		k.locks[sessionID] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, sessionID)
		}
		k.mu.Unlock()
	}
}
