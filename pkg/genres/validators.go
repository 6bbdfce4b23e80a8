package genres

type ListGenresQuery struct {
	Limit  int `query:"limit" default:"20" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

type CreateGenrePayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=100"`
}

type UpdateGenrePayload struct {
	Name *string `json:"name" mod:"trim" validate:"omitempty,required,max=100"`
}
