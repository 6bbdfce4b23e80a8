package catalog

// ListBooksQuery are the query params for listing books.
type ListBooksQuery struct {
	Limit    int  `query:"limit" default:"12" validate:"min=1,max=100"`
	Offset   int  `query:"offset" validate:"min=0"`
	AuthorID *int `query:"author_id"`
	GenreID  *int `query:"genre_id"`
}

type CreateBookPayload struct {
	Title      string  `json:"title" mod:"trim" validate:"required,max=200"`
	AuthorID   *int    `json:"author_id"`
	Summary    string  `json:"summary" mod:"trim" validate:"max=1000"`
	LanguageID *int    `json:"language_id"`
	URL        *string `json:"url" validate:"omitempty,url"`
	GenreIDs   []int   `json:"genre_ids"`
}

type UpdateBookPayload struct {
	Title      *string `json:"title" mod:"trim" validate:"omitempty,required,max=200"`
	AuthorID   *int    `json:"author_id"`
	Summary    *string `json:"summary" mod:"trim" validate:"omitempty,max=1000"`
	LanguageID *int    `json:"language_id"`
	URL        *string `json:"url" validate:"omitempty,url"`
	GenreIDs   *[]int  `json:"genre_ids"`
}

type CreateInstancePayload struct {
	BookID  int    `json:"book_id" validate:"required"`
	Imprint string `json:"imprint" mod:"trim" validate:"max=200"`
}

type UpdateInstancePayload struct {
	Imprint *string `json:"imprint" mod:"trim" validate:"omitempty,max=200"`
}
