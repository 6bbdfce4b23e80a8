package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                      int        `bun:",pk,nullzero" json:"id"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
	Username                string     `bun:",nullzero" json:"username"`
	Email                   *string    `json:"email,omitempty"`
	PasswordHash            string     `json:"-"` // Never expose password hash
	RoleID                  int        `json:"role_id"`
	IsActive                bool       `json:"is_active"`
	StudentsAtItalianSchool int        `bun:"students_at_italian_school" json:"students_at_italian_school"`
	Supporter               bool       `json:"supporter"`
	LibraryCardUntil        *time.Time `json:"library_card_until,omitempty"`

	// Relations
	Role *Role `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
}

// IsExpired reports whether the user's library card has lapsed. A user with no
// card date on record is treated as expired.
func (u *User) IsExpired(today time.Time) bool {
	if u.LibraryCardUntil == nil {
		return true
	}
	return u.LibraryCardUntil.Before(today)
}

// MaxBooks is the number of copies a user may hold reserved at once.
func (u *User) MaxBooks() int {
	// return u.StudentsAtItalianSchool + 1
	return 1
}

// HasPermission checks if the user has a specific permission.
func (u *User) HasPermission(resource, operation string) bool {
	if u.Role == nil {
		return false
	}
	return u.Role.HasPermission(resource, operation)
}
