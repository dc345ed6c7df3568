package model

// ActivityType is a user-defined workout category in the `activity_types`
// table. Labels are unique per owning user; two different users may own
// types with the same label.
type ActivityType struct {
    ID          string `json:"id"`
    UserID      string `json:"user_id"`
    Type        string `json:"type"`
    Description string `json:"description,omitempty"`
}
