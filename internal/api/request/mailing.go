package request

import "time"

// CreateMailing is the body for POST /mailings.
type CreateMailing struct {
	StartAt      time.Time `json:"start_at" validate:"required"`
	EndAt        time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
	MessageID    string    `json:"message_id" validate:"required"`
	RecipientIDs []string  `json:"recipient_ids" validate:"required,min=1"`
}

// UpdateMailing is the body for PUT/PATCH /mailings/{id}. Status is not
// settable; it only changes through dispatch.
type UpdateMailing struct {
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	MessageID    *string    `json:"message_id"`
	RecipientIDs []string   `json:"recipient_ids" validate:"omitempty,min=1"`
}
