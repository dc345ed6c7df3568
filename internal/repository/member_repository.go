package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coachlog/coachlog-api/internal/model"
)

// MemberRepo encapsulates all database queries on the `team_members` table.
// FindByID deliberately loads the owning team and its coach in one query:
// every delegation decision needs the coach id, and splitting the lookup
// would let callers forget the ownership half of the check.
type MemberRepo struct {
	db *sql.DB
}

// NewMemberRepo constructs a MemberRepo with the provided DB handle.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

// Create inserts a pending invitation row for the given email on a team.
func (r *MemberRepo) Create(ctx context.Context, teamID, email string) (*model.TeamMember, error) {
	id := uuid.NewString()
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO team_members (id, team_id, email) VALUES (?,?,?)",
		id, teamID, email)
	if err != nil {
		return nil, err
	}
	return &model.TeamMember{ID: id, TeamID: teamID, Email: email}, nil
}

// FindByID fetches a membership together with its team, the team's coach id
// and, when the invitation has been accepted, the linked user's id and name.
// Returns ErrNotFound when no such membership exists.
func (r *MemberRepo) FindByID(ctx context.Context, id string) (*model.TeamMember, error) {
	var m model.TeamMember
	var team model.Team
	var userID, userName sql.NullString
	var acceptedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT m.id, m.team_id, m.email, m.user_id, u.name, m.accepted_at,
		        m.created_at, m.updated_at,
		        t.id, t.coach_id, t.name
		 FROM team_members m
		 JOIN teams t ON t.id = m.team_id
		 LEFT JOIN users u ON u.id = m.user_id
		 WHERE m.id = ?`, id).
		Scan(&m.ID, &m.TeamID, &m.Email, &userID, &userName, &acceptedAt,
			&m.CreatedAt, &m.UpdatedAt,
			&team.ID, &team.CoachID, &team.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.UserID = userID.String
	m.UserName = userName.String
	if acceptedAt.Valid {
		at := acceptedAt.Time
		m.AcceptedAt = &at
	}
	m.Team = &team
	return &m, nil
}

// Accept links the membership to the accepting user and stamps the
// acceptance time. The transition is one-way; the handler guards that the
// accepting user's email matches the invitation before calling this.
func (r *MemberRepo) Accept(ctx context.Context, id, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE team_members
		 SET user_id = ?, accepted_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, userID, at.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a membership row by id. Authority is checked by the
// handler (team coach or invited user); zero affected rows yield
// ErrNotFound so the caller can keep deletes idempotent.
func (r *MemberRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM team_members WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInvitations returns the still-pending invitations addressed to an
// email, with the inviting team and coach attached.
func (r *MemberRepo) ListInvitations(ctx context.Context, email string) ([]*model.TeamMember, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.team_id, m.email, m.created_at, m.updated_at,
		        t.id, t.coach_id, t.name, c.name
		 FROM team_members m
		 JOIN teams t ON t.id = m.team_id
		 JOIN users c ON c.id = t.coach_id
		 WHERE m.email = ? AND m.accepted_at IS NULL
		 ORDER BY m.created_at`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMembers(rows)
}

// ListByUser returns the accepted memberships of a user, with team and
// coach attached. This backs the athlete's "my teams" view.
func (r *MemberRepo) ListByUser(ctx context.Context, userID string) ([]*model.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.team_id, m.email, m.created_at, m.updated_at,
		        t.id, t.coach_id, t.name, c.name
		 FROM team_members m
		 JOIN teams t ON t.id = m.team_id
		 JOIN users c ON c.id = t.coach_id
		 WHERE m.user_id = ?
		 ORDER BY m.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMembers(rows)
}

func collectMembers(rows *sql.Rows) ([]*model.TeamMember, error) {
	out := []*model.TeamMember{}
	for rows.Next() {
		m := new(model.TeamMember)
		t := new(model.Team)
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Email, &m.CreatedAt, &m.UpdatedAt,
			&t.ID, &t.CoachID, &t.Name, &t.CoachName); err != nil {
			return nil, err
		}
		m.Team = t
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
