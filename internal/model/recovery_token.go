package model

import "time"

// RecoveryToken models a row in the `recovery_tokens` table. Only the
// SHA-256 hash of the token mailed to the user is stored. A token is
// single-use: UsedAt is set when the password is reset with it.
//
// Fields:
//  ID        – UUID primary key.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the raw token.
//  ExpiresAt – expiration timestamp.
//  UsedAt    – when the token was consumed (nil if still usable).
//  CreatedAt – timestamp of creation.
type RecoveryToken struct {
    ID        string
    UserID    string
    TokenHash string
    ExpiresAt time.Time
    UsedAt    *time.Time
    CreatedAt time.Time
}
