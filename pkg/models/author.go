package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	FirstName string    `bun:",nullzero" json:"first_name"`
	LastName  string    `bun:",nullzero" json:"last_name"`
	BookCount int       `bun:",scanonly" json:"book_count"`
}

// DisplayName formats the author the way catalog listings show them.
func (a *Author) DisplayName() string {
	return a.LastName + ", " + a.FirstName
}
