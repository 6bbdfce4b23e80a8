package auth

// LoginPayload represents the request body for logging in.
type LoginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterPayload represents the request body for registering a new member.
// Set students_at_italian_school to 0 if you just donated books; you will
// still be able to borrow 1 book.
type RegisterPayload struct {
	Username                string  `json:"username" mod:"trim" validate:"required,min=3,max=150,username"`
	Email                   *string `json:"email" validate:"omitempty,email"`
	Password                string  `json:"password" validate:"required,min=8"`
	StudentsAtItalianSchool int     `json:"students_at_italian_school" default:"1" validate:"min=0"`
}

// RegisterOptions carries the validated registration fields into the service.
type RegisterOptions struct {
	Username                string
	Email                   *string
	Password                string
	StudentsAtItalianSchool int
}

// MeResponse is the authenticated-user payload returned by login and /auth/me.
type MeResponse struct {
	ID                      int      `json:"id"`
	Username                string   `json:"username"`
	Email                   *string  `json:"email,omitempty"`
	RoleID                  int      `json:"role_id"`
	RoleName                string   `json:"role_name"`
	Permissions             []string `json:"permissions"`
	StudentsAtItalianSchool int      `json:"students_at_italian_school"`
	Supporter               bool     `json:"supporter"`
	LibraryCardExpired      bool     `json:"library_card_expired"`
	MaxBooks                int      `json:"max_books"`
}
