package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	// Clients sometimes post an inactive hint; the server never honors it.
	Inactive bool `json:"inactive,omitempty"`
}

type UserUpdateRequest struct {
	Username string `json:"username"`
}

// UserResponse is the outward-facing view of an account. Hash, activation
// token and the inactive flag never appear here.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UserPage struct {
	Content    []UserResponse `json:"content"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalPages int            `json:"totalPages"`
}
