package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/coachlog/coachlog-api/internal/model"
)

// UserRepo encapsulates all database queries on the `users` table.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the provided DB handle, allowing
// dependency injection of the database in tests and at startup.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, name, email, password_hash, profile, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var hash, profile sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &hash, &profile, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.PasswordHash = hash.String
	u.Profile = profile.String
	return &u, nil
}

// Create inserts a new user and returns the stored record. The email is
// normalized to lowercase. passwordHash may be empty for accounts backed
// by an external identity provider.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	id := uuid.NewString()
	email = strings.ToLower(strings.TrimSpace(email))
	var hash any
	if passwordHash != "" {
		hash = passwordHash
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash) VALUES (?,?,?,?)",
		id, name, email, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a user by id. Returns ErrNotFound when no row matches.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// Update changes the mutable attributes of a user. Empty arguments leave
// the corresponding column untouched.
func (r *UserRepo) Update(ctx context.Context, id, name, profile string) (*model.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET name = COALESCE(NULLIF(?, ''), name),
		     profile = COALESCE(NULLIF(?, ''), profile),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, name, profile, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user together with everything the user owns: activities,
// activity types, coached teams (and their memberships), memberships linked
// to the user, and outstanding recovery tokens. The cascade runs in a single
// transaction so a failed step leaves the account intact.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM activities WHERE user_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM activity_types WHERE user_id = ?", id); err != nil {
		return err
	}
	// Memberships of teams this user coaches, then the teams themselves.
	if _, err = tx.ExecContext(ctx,
		`DELETE m FROM team_members m
		 JOIN teams t ON t.id = m.team_id
		 WHERE t.coach_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM teams WHERE coach_id = ?", id); err != nil {
		return err
	}
	// Memberships the user holds as an athlete.
	if _, err = tx.ExecContext(ctx, "DELETE FROM team_members WHERE user_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM recovery_tokens WHERE user_id = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}
