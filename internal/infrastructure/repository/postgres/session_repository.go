package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wiratama/courtside/internal/domain/session"
	qb "github.com/wiratama/courtside/internal/platform/querybuilder"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s session.Session) (session.Session, error) {
	query, args, err := qb.InsertModel("sessions", sessionInsertModel{
		ID:         s.ID,
		Date:       s.Date,
		Courts:     s.Courts,
		MaxPlayers: s.MaxPlayers,
		Cost:       s.Cost,
		Archived:   s.Archived,
	}, "RETURNING id, session_date, courts, max_players, cost, archived, created_at, updated_at")
	if err != nil {
		return session.Session{}, fmt.Errorf("build insert session query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isUniqueViolation(err) {
			return session.Session{}, session.ErrDuplicateDate
		}
		return session.Session{}, fmt.Errorf("insert session: %w", err)
	}

	return row.toDomain(), nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (session.Session, bool, error) {
	query, args, err := qb.Select("*").From("sessions").
		Where(qb.Eq("id", sessionID)).
		ToSQL()
	if err != nil {
		return session.Session{}, false, fmt.Errorf("build get session by id query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("get session by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SessionRepository) GetByDate(ctx context.Context, date time.Time) (session.Session, bool, error) {
	query, args, err := qb.Select("*").From("sessions").
		Where(qb.Eq("session_date", date)).
		ToSQL()
	if err != nil {
		return session.Session{}, false, fmt.Errorf("build get session by date query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("get session by date: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SessionRepository) FirstUpcoming(ctx context.Context, from time.Time) (session.Session, bool, error) {
	query, args, err := qb.Select("*").From("sessions").
		Where(
			qb.Gte("session_date", from),
			qb.Eq("archived", false),
		).
		OrderBy("session_date ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		return session.Session{}, false, fmt.Errorf("build first upcoming session query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("get first upcoming session: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SessionRepository) List(ctx context.Context, includeArchived bool) ([]session.Session, error) {
	builder := qb.Select("*").From("sessions").OrderBy("session_date DESC")
	if !includeArchived {
		builder = builder.Where(qb.Eq("archived", false))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sessions query: %w", err)
	}

	var rows []sessionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}

	out := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SessionRepository) Update(ctx context.Context, sessionID string, u session.Update) (session.Session, bool, error) {
	if u.IsEmpty() {
		return r.GetByID(ctx, sessionID)
	}

	builder := qb.Update("sessions").Set("updated_at", time.Now().UTC())
	if u.Courts != nil {
		builder = builder.Set("courts", *u.Courts)
	}
	if u.MaxPlayers != nil {
		builder = builder.Set("max_players", *u.MaxPlayers)
	}
	if u.Cost != nil {
		builder = builder.Set("cost", *u.Cost)
	}
	if u.Archived != nil {
		builder = builder.Set("archived", *u.Archived)
	}
	query, args, err := builder.
		Where(qb.Eq("id", sessionID)).
		Suffix("RETURNING id, session_date, courts, max_players, cost, archived, created_at, updated_at").
		ToSQL()
	if err != nil {
		return session.Session{}, false, fmt.Errorf("build update session query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("update session: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SessionRepository) ArchiveBefore(ctx context.Context, date time.Time) (int64, error) {
	query, args, err := qb.Update("sessions").
		Set("archived", true).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Lt("session_date", date),
			qb.Eq("archived", false),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build archive sessions query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("archive sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count archived sessions: %w", err)
	}
	return affected, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", sessionID)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted sessions: %w", err)
	}
	return affected > 0, nil
}
