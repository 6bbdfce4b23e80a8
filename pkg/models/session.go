package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is server-side per-browser state. It is created lazily the first
// time a browse preference is toggled and expires on its own.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	Token         string    `bun:",pk" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	AvailableOnly bool      `json:"available_only"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// IsExpired reports whether the session should be treated as absent.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
