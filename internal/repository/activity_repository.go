package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/coachlog/coachlog-api/internal/model"
)

// ActivityRepo encapsulates all database queries on the `activities` table.
// Every lookup that backs a mutation is scoped by (id, user_id) in a single
// query so activities of other users are indistinguishable from absent ones.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo constructs an ActivityRepo with the provided DB handle.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

const activityColumns = `id, user_id, datetime, status, type_id,
	goal_distance, distance, goal_duration, duration, created_at, updated_at`

func scanActivity(scan func(...any) error) (*model.Activity, error) {
	var a model.Activity
	var goalDist, dist sql.NullFloat64
	var goalDur, dur sql.NullString
	err := scan(&a.ID, &a.UserID, &a.Datetime, &a.Status, &a.TypeID,
		&goalDist, &dist, &goalDur, &dur, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if goalDist.Valid {
		v := goalDist.Float64
		a.GoalDistance = &v
	}
	if dist.Valid {
		v := dist.Float64
		a.Distance = &v
	}
	a.GoalDuration = goalDur.String
	a.Duration = dur.String
	return &a, nil
}

// Create inserts a new activity owned by userID and returns the stored row.
func (r *ActivityRepo) Create(ctx context.Context, userID string, a *model.Activity) (*model.Activity, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activities
		 (id, user_id, datetime, status, type_id, goal_distance, distance, goal_duration, duration)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		id, userID, a.Datetime.UTC(), a.Status, a.TypeID,
		a.GoalDistance, a.Distance, nullStr(a.GoalDuration), nullStr(a.Duration))
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id, userID)
}

// FindByID fetches an activity scoped by (id, owner). Returns ErrNotFound
// when the activity does not exist or is owned by someone else.
func (r *ActivityRepo) FindByID(ctx context.Context, id, userID string) (*model.Activity, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = ? AND user_id = ?", id, userID)
	a, err := scanActivity(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// Update rewrites the mutable columns of an activity that was already
// fetched under the owner's scope.
func (r *ActivityRepo) Update(ctx context.Context, a *model.Activity) (*model.Activity, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE activities
		 SET datetime = ?, status = ?, type_id = ?, goal_distance = ?, distance = ?,
		     goal_duration = ?, duration = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		a.Datetime.UTC(), a.Status, a.TypeID, a.GoalDistance, a.Distance,
		nullStr(a.GoalDuration), nullStr(a.Duration), a.ID, a.UserID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, a.ID, a.UserID)
}

// Delete removes an activity scoped by (id, owner). Zero affected rows
// yield ErrNotFound; the handler turns that into an idempotent no-op.
func (r *ActivityRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM activities WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all activities of a user ordered by datetime.
func (r *ActivityRepo) List(ctx context.Context, userID string) ([]*model.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE user_id = ? ORDER BY datetime", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

// ListBetween returns the user's activities with from <= datetime < to.
func (r *ActivityRepo) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]*model.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+activityColumns+` FROM activities
		 WHERE user_id = ? AND datetime >= ? AND datetime < ? ORDER BY datetime`,
		userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

// CountByType reports how many activities of a user reference the given
// activity type. Backs the in-use guard on type deletion.
func (r *ActivityRepo) CountByType(ctx context.Context, typeID, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM activities WHERE type_id = ? AND user_id = ?",
		typeID, userID).Scan(&n)
	return n, err
}

func collectActivities(rows *sql.Rows) ([]*model.Activity, error) {
	out := []*model.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
