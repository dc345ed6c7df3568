package model

import "time"

// Activity is a single workout entry in the `activities` table. Every
// activity belongs to exactly one user and references one of that user's
// activity types.
//
// Fields:
//  ID           – UUID primary key.
//  UserID       – owning user.
//  Datetime     – when the workout is planned or took place.
//  Status       – free-form status string (e.g. Planned, Completed).
//  TypeID       – references activity_types.id of the same owner.
//  GoalDistance – optional target distance in meters.
//  Distance     – optional actual distance in meters.
//  GoalDuration – optional target duration (free-form, e.g. "45m").
//  Duration     – optional actual duration.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Activity struct {
    ID           string    `json:"id"`
    UserID       string    `json:"user_id"`
    Datetime     time.Time `json:"datetime"`
    Status       string    `json:"status"`
    TypeID       string    `json:"type_id"`
    GoalDistance *float64  `json:"goal_distance,omitempty"`
    Distance     *float64  `json:"distance,omitempty"`
    GoalDuration string    `json:"goal_duration,omitempty"`
    Duration     string    `json:"duration,omitempty"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}
