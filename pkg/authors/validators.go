package authors

type ListAuthorsQuery struct {
	Limit  int `query:"limit" default:"20" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

type CreateAuthorPayload struct {
	FirstName string `json:"first_name" mod:"trim" validate:"required,max=100"`
	LastName  string `json:"last_name" mod:"trim" validate:"required,max=100"`
}

type UpdateAuthorPayload struct {
	FirstName *string `json:"first_name" mod:"trim" validate:"omitempty,required,max=100"`
	LastName  *string `json:"last_name" mod:"trim" validate:"omitempty,required,max=100"`
}
