package domain

import "time"

// Notification is a persisted in-app notice. DedupeKey, when set, suppresses
// duplicate deliveries at the storage layer (unique index, insert-if-absent).
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link"`
	DedupeKey *string   `json:"dedupe_key,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedOn time.Time `json:"created_on"`
}
