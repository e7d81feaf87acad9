package model

import "time"

// Mailing is a scheduled one-to-many send of a single Message to a set of
// Recipients between StartAt and EndAt.
type Mailing struct {
	ID           string    `json:"id"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
	Status       string    `json:"status"`
	MessageID    string    `json:"message_id"`
	RecipientIDs []string  `json:"recipient_ids"`
	OwnerID      string    `json:"owner_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
