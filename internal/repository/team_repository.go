package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/coachlog/coachlog-api/internal/model"
)

// TeamRepo encapsulates all database queries on the `teams` table. Lookups
// that back mutations are always scoped by (id, coach_id) in a single query
// so a coach can never observe another coach's team.
type TeamRepo struct {
	db *sql.DB
}

// NewTeamRepo constructs a TeamRepo with the provided DB handle.
func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

// Create inserts a new team owned by the given coach and returns it.
func (r *TeamRepo) Create(ctx context.Context, coachID, name, description string) (*model.Team, error) {
	id := uuid.NewString()
	var desc any
	if description != "" {
		desc = description
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO teams (id, coach_id, name, description) VALUES (?,?,?,?)",
		id, coachID, name, desc)
	if err != nil {
		return nil, err
	}
	return r.getRow(ctx, id, coachID)
}

func (r *TeamRepo) getRow(ctx context.Context, id, coachID string) (*model.Team, error) {
	var t model.Team
	var desc sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, coach_id, name, description, created_at, updated_at
		 FROM teams WHERE id = ? AND coach_id = ?`, id, coachID).
		Scan(&t.ID, &t.CoachID, &t.Name, &desc, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Description = desc.String
	return &t, nil
}

// GetByIDAndCoach fetches a team by id but only if it is coached by the
// given user, including its membership rows. Returns ErrNotFound when the
// team does not exist or belongs to another coach.
func (r *TeamRepo) GetByIDAndCoach(ctx context.Context, id, coachID string) (*model.Team, error) {
	t, err := r.getRow(ctx, id, coachID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, team_id, email, user_id, accepted_at, created_at, updated_at
		 FROM team_members WHERE team_id = ? ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		m := new(model.TeamMember)
		var userID sql.NullString
		var acceptedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Email, &userID, &acceptedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.UserID = userID.String
		if acceptedAt.Valid {
			at := acceptedAt.Time
			m.AcceptedAt = &at
		}
		t.Members = append(t.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByCoach returns all teams coached by the given user ordered by
// creation time. Membership rows are not loaded for listings.
func (r *TeamRepo) ListByCoach(ctx context.Context, coachID string) ([]*model.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, coach_id, name, description, created_at, updated_at
		 FROM teams WHERE coach_id = ? ORDER BY created_at`, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Team{}
	for rows.Next() {
		t := new(model.Team)
		var desc sql.NullString
		if err := rows.Scan(&t.ID, &t.CoachID, &t.Name, &desc, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Description = desc.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes name and/or description of a team owned by the coach.
// Empty arguments leave the corresponding column untouched.
func (r *TeamRepo) Update(ctx context.Context, id, coachID, name, description string) (*model.Team, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE teams
		 SET name = COALESCE(NULLIF(?, ''), name),
		     description = COALESCE(NULLIF(?, ''), description),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND coach_id = ?`, name, description, id, coachID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.getRow(ctx, id, coachID)
}

// Delete removes a team and its membership rows, provided the team is
// coached by the given user. Deleting a team that does not exist under the
// coach's scope affects zero rows and returns ErrNotFound; callers decide
// whether that is an error.
func (r *TeamRepo) Delete(ctx context.Context, id, coachID string) error {
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

	if _, err = tx.ExecContext(ctx,
		`DELETE m FROM team_members m
		 JOIN teams t ON t.id = m.team_id
		 WHERE t.id = ? AND t.coach_id = ?`, id, coachID); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx,
		"DELETE FROM teams WHERE id = ? AND coach_id = ?", id, coachID); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}
