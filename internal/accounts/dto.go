package accounts

// RegisterRequest carries the registration payload.
type RegisterRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// LoginRequest carries the credential pair to verify.
type LoginRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DuplicateRequest asks whether a user_id is still available.
type DuplicateRequest struct {
	UserID string `json:"user_id" validate:"required"`
}
