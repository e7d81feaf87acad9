package request

// CreateMessage is the body for POST /messages.
type CreateMessage struct {
	Subject string `json:"subject" validate:"required,max=255"`
	Body    string `json:"body" validate:"required"`
}

// UpdateMessage is the body for PUT/PATCH /messages/{id}.
type UpdateMessage struct {
	Subject *string `json:"subject" validate:"omitempty,max=255"`
	Body    *string `json:"body"`
}
