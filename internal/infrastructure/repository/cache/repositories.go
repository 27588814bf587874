package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/wiratama/courtside/internal/domain/session"
	basecache "github.com/wiratama/courtside/internal/platform/cache"
)

// SessionRepository caches session reads and invalidates every session key on
// any write. Roster data is deliberately uncached: positions shift on every
// signup and cancellation, and the roster store is already cheap to read.
type SessionRepository struct {
	next  session.Repository
	cache *basecache.Store
}

func NewSessionRepository(next session.Repository, cache *basecache.Store) *SessionRepository {
	return &SessionRepository{next: next, cache: cache}
}

func (r *SessionRepository) Create(ctx context.Context, s session.Session) (session.Session, error) {
	created, err := r.next.Create(ctx, s)
	if err != nil {
		return session.Session{}, err
	}
	r.invalidate()
	return created, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (session.Session, bool, error) {
	key := "session:id:" + sessionID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return cachedSession{value: item, exists: exists}, nil
	})
	if err != nil {
		return session.Session{}, false, err
	}

	cached, _ := v.(cachedSession)
	return cached.value, cached.exists, nil
}

func (r *SessionRepository) GetByDate(ctx context.Context, date time.Time) (session.Session, bool, error) {
	key := "session:date:" + date.UTC().Format(session.DateFormat)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByDate(ctx, date)
		if err != nil {
			return nil, err
		}
		return cachedSession{value: item, exists: exists}, nil
	})
	if err != nil {
		return session.Session{}, false, err
	}

	cached, _ := v.(cachedSession)
	return cached.value, cached.exists, nil
}

func (r *SessionRepository) FirstUpcoming(ctx context.Context, from time.Time) (session.Session, bool, error) {
	key := "session:upcoming:" + from.UTC().Format(session.DateFormat)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.FirstUpcoming(ctx, from)
		if err != nil {
			return nil, err
		}
		return cachedSession{value: item, exists: exists}, nil
	})
	if err != nil {
		return session.Session{}, false, err
	}

	cached, _ := v.(cachedSession)
	return cached.value, cached.exists, nil
}

func (r *SessionRepository) List(ctx context.Context, includeArchived bool) ([]session.Session, error) {
	key := "session:list:" + strconv.FormatBool(includeArchived)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx, includeArchived)
		if err != nil {
			return nil, err
		}
		return append([]session.Session(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]session.Session)
	return append([]session.Session(nil), items...), nil
}

func (r *SessionRepository) Update(ctx context.Context, sessionID string, u session.Update) (session.Session, bool, error) {
	updated, exists, err := r.next.Update(ctx, sessionID, u)
	if err != nil {
		return session.Session{}, false, err
	}
	if exists {
		r.invalidate()
	}
	return updated, exists, nil
}

func (r *SessionRepository) ArchiveBefore(ctx context.Context, date time.Time) (int64, error) {
	archived, err := r.next.ArchiveBefore(ctx, date)
	if err != nil {
		return 0, err
	}
	if archived > 0 {
		r.invalidate()
	}
	return archived, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) (bool, error) {
	deleted, err := r.next.Delete(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if deleted {
		r.invalidate()
	}
	return deleted, nil
}

func (r *SessionRepository) invalidate() {
	r.cache.DeletePrefix(context.Background(), "session:")
}

type cachedSession struct {
	value  session.Session
	exists bool
}
