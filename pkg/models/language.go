package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DefaultLanguageID is assigned to new books when no language is given.
const DefaultLanguageID = 1

type Language struct {
	bun.BaseModel `bun:"table:languages,alias:l"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
}
