package model

import "time"

// TeamMember is an invitation/membership row in the `team_members` table.
// A row starts out Pending (UserID and AcceptedAt unset) and becomes Accepted
// when the user whose email matches Email accepts the invitation. There are
// no further transitions.
//
// Fields:
//  ID         – UUID primary key.
//  TeamID     – owning team.
//  Email      – invited email address.
//  UserID     – linked user once accepted, empty while pending.
//  UserName   – linked user's display name, populated by joined lookups only.
//  AcceptedAt – acceptance time, nil while pending.
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type TeamMember struct {
    ID         string     `json:"id"`
    TeamID     string     `json:"team_id"`
    Email      string     `json:"email"`
    UserID     string     `json:"user_id,omitempty"`
    UserName   string     `json:"user_name,omitempty"`
    AcceptedAt *time.Time `json:"accepted_at,omitempty"`
    CreatedAt  time.Time  `json:"created_at"`
    UpdatedAt  time.Time  `json:"updated_at"`

    // Team is populated by MemberRepo.FindByID so callers can check the
    // owning team's coach without a second query.
    Team *Team `json:"team,omitempty"`
}

// Accepted reports whether the invitation has been accepted.
func (m *TeamMember) Accepted() bool { return m.AcceptedAt != nil }
