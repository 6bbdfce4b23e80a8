package users

type ListUsersQuery struct {
	Limit      int  `query:"limit" default:"20" validate:"min=1,max=100"`
	Offset     int  `query:"offset" validate:"min=0"`
	ActiveOnly bool `query:"active_only"`
}

type ResetPasswordPayload struct {
	CurrentPassword *string `json:"current_password"`
	NewPassword     string  `json:"new_password" validate:"required,min=8"`
}

type UpdateUserPayload struct {
	Email                   *string `json:"email" mod:"trim" validate:"omitempty,email"`
	Supporter               *bool   `json:"supporter"`
	StudentsAtItalianSchool *int    `json:"students_at_italian_school" validate:"omitempty,min=0"`
	LibraryCardUntil        *string `json:"library_card_until" validate:"omitempty,date"`
}
