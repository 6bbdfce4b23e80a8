package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Copy statuses derived from the open loan of an instance.
const (
	StatusAvailable = "Available"
	StatusReserved  = "Reserved"
	StatusOnLoan    = "On loan"
	StatusUnknown   = "Unknown"
)

type BookInstance struct {
	bun.BaseModel `bun:"table:book_instances,alias:bi"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	Imprint   string    `json:"imprint"`

	// Relations
	Book *Book `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`

	Status string `bun:"-" json:"status,omitempty"`
}

// InstanceStatus computes the status of a copy from its open loan (the loan
// whose return_date is unset), or from nil when no such loan exists. At most
// one open loan per instance is enforced by a partial unique index.
func InstanceStatus(open *Loan) string {
	if open == nil {
		return StatusAvailable
	}
	if open.IsReservation() {
		return StatusReserved
	}
	if open.IsLoan() {
		return StatusOnLoan
	}
	return StatusUnknown
}
