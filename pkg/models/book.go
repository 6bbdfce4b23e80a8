package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID             int       `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Title          string    `bun:",nullzero" json:"title"`
	AuthorID       *int      `json:"author_id,omitempty"`
	Summary        string    `json:"summary"`
	LanguageID     *int      `json:"language_id,omitempty"`
	CoverImagePath *string   `json:"cover_image_path,omitempty"`
	URL            *string   `bun:"url" json:"url,omitempty"`

	// Relations
	Author    *Author         `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Language  *Language       `bun:"rel:belongs-to,join:language_id=id" json:"language,omitempty"`
	Genres    []*Genre        `bun:"-" json:"genres,omitempty"`
	Instances []*BookInstance `bun:"rel:has-many,join:id=book_id" json:"instances,omitempty"`

	Available bool `bun:",scanonly" json:"available"`
}

// IsAvailable reports whether any copy of the book can currently be borrowed.
// openLoans maps instance IDs to their open loan, if one exists.
func (b *Book) IsAvailable(instances []*BookInstance, openLoans map[uuid.UUID]*Loan) bool {
	for _, bi := range instances {
		if InstanceStatus(openLoans[bi.ID]) == StatusAvailable {
			return true
		}
	}
	return false
}
