package model

import "time"

// Team is a group of athletes coached by a single user. Only the owning
// coach may mutate or delete it. Corresponds to a row in the `teams` table.
//
// Fields:
//  ID          – UUID primary key.
//  CoachID     – user ID of the owning coach.
//  CoachName   – coach display name, populated by joined lookups only.
//  Name        – team name.
//  Description – optional free-text description.
//  Members     – membership rows, populated by scoped lookups only.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Team struct {
    ID          string        `json:"id"`
    CoachID     string        `json:"coach_id"`
    CoachName   string        `json:"coach_name,omitempty"`
    Name        string        `json:"name"`
    Description string        `json:"description,omitempty"`
    Members     []*TeamMember `json:"members,omitempty"`
    CreatedAt   time.Time     `json:"created_at"`
    UpdatedAt   time.Time     `json:"updated_at"`
}
