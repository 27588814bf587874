package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/wiratama/courtside/internal/domain/registrant"
	qb "github.com/wiratama/courtside/internal/platform/querybuilder"
)

type RegistrantRepository struct {
	db *sqlx.DB
}

func NewRegistrantRepository(db *sqlx.DB) *RegistrantRepository {
	return &RegistrantRepository{db: db}
}

func (r *RegistrantRepository) ListBySession(ctx context.Context, sessionID string, waitlisted bool) ([]registrant.Registrant, error) {
	query, args, err := qb.Select("*").From("registrants").
		Where(
			qb.Eq("session_id", sessionID),
			qb.Eq("waitlisted", waitlisted),
		).
		OrderBy("position ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list registrants query: %w", err)
	}

	var rows []registrantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select registrants: %w", err)
	}

	out := make([]registrant.Registrant, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RegistrantRepository) GetByID(ctx context.Context, registrantID string) (registrant.Registrant, bool, error) {
	query, args, err := qb.Select("*").From("registrants").
		Where(qb.Eq("id", registrantID)).
		ToSQL()
	if err != nil {
		return registrant.Registrant{}, false, fmt.Errorf("build get registrant by id query: %w", err)
	}

	var row registrantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return registrant.Registrant{}, false, nil
		}
		return registrant.Registrant{}, false, fmt.Errorf("get registrant by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *RegistrantRepository) Insert(ctx context.Context, reg registrant.Registrant) (registrant.Registrant, error) {
	query, args, err := qb.InsertModel("registrants", registrantInsertModel{
		ID:         reg.ID,
		SessionID:  reg.SessionID,
		Name:       reg.Name,
		PIN:        reg.PIN,
		Position:   reg.Position,
		Waitlisted: reg.Waitlisted,
		Paid:       reg.Paid,
	}, "RETURNING id, session_id, name, pin, position, waitlisted, paid, signed_up_at, updated_at")
	if err != nil {
		return registrant.Registrant{}, fmt.Errorf("build insert registrant query: %w", err)
	}

	var row registrantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return registrant.Registrant{}, fmt.Errorf("insert registrant: %w", err)
	}

	return row.toDomain(), nil
}

func (r *RegistrantRepository) Delete(ctx context.Context, registrantID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM registrants WHERE id = $1", registrantID)
	if err != nil {
		return false, fmt.Errorf("delete registrant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted registrants: %w", err)
	}
	return affected > 0, nil
}

func (r *RegistrantRepository) SetPaid(ctx context.Context, registrantID string, paid bool) (registrant.Registrant, bool, error) {
	query, args, err := qb.Update("registrants").
		Set("paid", paid).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", registrantID)).
		Suffix("RETURNING id, session_id, name, pin, position, waitlisted, paid, signed_up_at, updated_at").
		ToSQL()
	if err != nil {
		return registrant.Registrant{}, false, fmt.Errorf("build set registrant paid query: %w", err)
	}

	var row registrantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return registrant.Registrant{}, false, nil
		}
		return registrant.Registrant{}, false, fmt.Errorf("set registrant paid: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *RegistrantRepository) SetListAndPosition(ctx context.Context, registrantID string, waitlisted bool, position int) (bool, error) {
	query, args, err := qb.Update("registrants").
		Set("waitlisted", waitlisted).
		Set("position", position).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", registrantID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build move registrant query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("move registrant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count moved registrants: %w", err)
	}
	return affected > 0, nil
}

// Renumber rewrites an entire list's positions in one statement so a
// half-applied renumbering can never be observed.
func (r *RegistrantRepository) Renumber(ctx context.Context, sessionID string, waitlisted bool, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	const query = `
UPDATE registrants AS r
SET position = x.ord, updated_at = now()
FROM unnest($1::text[]) WITH ORDINALITY AS x(id, ord)
WHERE r.id = x.id
  AND r.session_id = $2
  AND r.waitlisted = $3`

	if _, err := r.db.ExecContext(ctx, query, pq.Array(orderedIDs), sessionID, waitlisted); err != nil {
		return fmt.Errorf("renumber registrants: %w", err)
	}
	return nil
}

func (r *RegistrantRepository) Count(ctx context.Context, sessionID string, waitlisted bool) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("registrants").
		Where(
			qb.Eq("session_id", sessionID),
			qb.Eq("waitlisted", waitlisted),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count registrants query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count registrants: %w", err)
	}
	return count, nil
}

func (r *RegistrantRepository) MaxPosition(ctx context.Context, sessionID string, waitlisted bool) (int, error) {
	query, args, err := qb.Select("COALESCE(MAX(position), 0)").From("registrants").
		Where(
			qb.Eq("session_id", sessionID),
			qb.Eq("waitlisted", waitlisted),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build max registrant position query: %w", err)
	}

	var max int
	if err := r.db.GetContext(ctx, &max, query, args...); err != nil {
		return 0, fmt.Errorf("get max registrant position: %w", err)
	}
	return max, nil
}

func (r *RegistrantRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM registrants WHERE session_id = $1", sessionID); err != nil {
		return fmt.Errorf("delete session registrants: %w", err)
	}
	return nil
}
