package model

import "time"

// Profile values stored in users.profile. A user without a profile has not
// picked a role yet and may only call operations that declare no role.
const (
    RoleCoach   = "COACH"
    RoleAthlete = "ATHLETE"
)

// User represents an application user as stored in the `users` table.
// PasswordHash is empty for accounts created through an external identity
// provider; such accounts can only sign in via the OIDC endpoint.
//
// Fields:
//  ID           – UUID primary key.
//  Name         – display name.
//  Email        – unique email address (stored lowercase).
//  PasswordHash – bcrypt hash, empty for external accounts.
//  Profile      – role tag (COACH or ATHLETE), empty when unset.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           string    `json:"id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Profile      string    `json:"profile,omitempty"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}
