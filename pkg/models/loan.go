package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultLoanDays is applied to a loan's due date when it is checked out
// without one.
const DefaultLoanDays = 14

type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:ln"`

	ID             int        `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ReservedDate   *time.Time `json:"reserved_date,omitempty"`
	LoanDate       *time.Time `json:"loan_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ReturnDate     *time.Time `json:"return_date,omitempty"`
	BorrowerID     int        `bun:",nullzero" json:"borrower_id"`
	BookInstanceID uuid.UUID  `bun:"book_instance_id,type:uuid" json:"book_instance_id"`

	// Relations
	Borrower     *User         `bun:"rel:belongs-to,join:borrower_id=id" json:"borrower,omitempty"`
	BookInstance *BookInstance `bun:"rel:belongs-to,join:book_instance_id=id" json:"book_instance,omitempty"`
}

// IsOpen reports whether the loan has not been closed yet.
func (l *Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// IsReservation reports whether the loan is a pure reservation: reserved but
// never checked out nor returned.
func (l *Loan) IsReservation() bool {
	return l.ReservedDate != nil && l.LoanDate == nil && l.ReturnDate == nil
}

// IsLoan reports whether the copy is currently out with the borrower.
func (l *Loan) IsLoan() bool {
	return l.LoanDate != nil && l.ReturnDate == nil
}

// IsOverdue reports whether the loan is open and past its due date.
func (l *Loan) IsOverdue(today time.Time) bool {
	return l.DueDate != nil && today.After(*l.DueDate) && l.ReturnDate == nil
}

// ApplyDefaultDueDate fills in the due date when the loan has a loan date but
// no due date. An already-set due date is left untouched.
func (l *Loan) ApplyDefaultDueDate() {
	if l.LoanDate != nil && l.DueDate == nil {
		due := l.LoanDate.AddDate(0, 0, DefaultLoanDays)
		l.DueDate = &due
	}
}
