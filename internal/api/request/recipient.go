package request

// CreateRecipient is the body for POST /recipients.
type CreateRecipient struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"max=255"`
	Comment  string `json:"comment" validate:"max=1000"`
}

// UpdateRecipient is the body for PUT/PATCH /recipients/{id}.
// Nil fields are left untouched.
type UpdateRecipient struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Comment  *string `json:"comment" validate:"omitempty,max=1000"`
}
