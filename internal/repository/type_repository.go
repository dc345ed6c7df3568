package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/coachlog/coachlog-api/internal/model"
)

// TypeRepo encapsulates all database queries on the `activity_types` table.
type TypeRepo struct {
	db *sql.DB
}

// NewTypeRepo constructs a TypeRepo with the provided DB handle.
func NewTypeRepo(db *sql.DB) *TypeRepo { return &TypeRepo{db: db} }

// Create inserts a new activity type owned by userID.
func (r *TypeRepo) Create(ctx context.Context, userID, label, description string) (*model.ActivityType, error) {
	id := uuid.NewString()
	var desc any
	if description != "" {
		desc = description
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO activity_types (id, user_id, type, description) VALUES (?,?,?,?)",
		id, userID, label, desc)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id, userID)
}

func (r *TypeRepo) scanOne(row *sql.Row) (*model.ActivityType, error) {
	var t model.ActivityType
	var desc sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &desc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Description = desc.String
	return &t, nil
}

// FindByID fetches a type scoped by (id, owner).
func (r *TypeRepo) FindByID(ctx context.Context, id, userID string) (*model.ActivityType, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT id, user_id, type, description FROM activity_types WHERE id = ? AND user_id = ?",
		id, userID))
}

// FindByLabel fetches a type by its label within one user's scope. Backs
// the per-user uniqueness check on create.
func (r *TypeRepo) FindByLabel(ctx context.Context, label, userID string) (*model.ActivityType, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT id, user_id, type, description FROM activity_types WHERE type = ? AND user_id = ?",
		strings.TrimSpace(label), userID))
}

// Update rewrites label and/or description; empty arguments leave the
// corresponding column untouched.
func (r *TypeRepo) Update(ctx context.Context, id, userID, label, description string) (*model.ActivityType, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE activity_types
		 SET type = COALESCE(NULLIF(?, ''), type),
		     description = COALESCE(NULLIF(?, ''), description)
		 WHERE id = ? AND user_id = ?`, label, description, id, userID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id, userID)
}

// Delete removes a type scoped by (id, owner). Zero affected rows yield
// ErrNotFound; the handler turns that into an idempotent no-op. The in-use
// guard is the handler's job since it needs the activity relationship.
func (r *TypeRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM activity_types WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all types owned by a user ordered by label.
func (r *TypeRepo) List(ctx context.Context, userID string) ([]*model.ActivityType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, type, description FROM activity_types WHERE user_id = ? ORDER BY type",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.ActivityType{}
	for rows.Next() {
		var t model.ActivityType
		var desc sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &desc); err != nil {
			return nil, err
		}
		t.Description = desc.String
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
