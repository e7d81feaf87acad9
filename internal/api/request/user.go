package request

// UpdateProfile is the body for PUT /me.
type UpdateProfile struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FullName  *string `json:"full_name" validate:"omitempty,max=255"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Country   *string `json:"country" validate:"omitempty,len=2"`
}

// CreateToken is the body for POST /me/tokens.
type CreateToken struct {
	Name string `json:"name" validate:"required,max=255"`
}
