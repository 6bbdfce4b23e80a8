package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestLoanDerivations(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		loan          Loan
		isReservation bool
		isLoan        bool
		isOverdue     bool
	}{
		{
			name: "open reservation",
			loan: Loan{ReservedDate: date(2025, time.June, 10)},

			isReservation: true,
		},
		{
			name: "checked out",
			loan: Loan{
				ReservedDate: date(2025, time.June, 10),
				LoanDate:     date(2025, time.June, 12),
				DueDate:      date(2025, time.June, 26),
			},

			isLoan: true,
		},
		{
			name: "walk-in loan without reservation",
			loan: Loan{
				LoanDate: date(2025, time.June, 12),
				DueDate:  date(2025, time.June, 26),
			},

			isLoan: true,
		},
		{
			name: "overdue loan",
			loan: Loan{
				LoanDate: date(2025, time.May, 1),
				DueDate:  date(2025, time.May, 15),
			},

			isLoan:    true,
			isOverdue: true,
		},
		{
			name: "due today is not overdue",
			loan: Loan{
				LoanDate: date(2025, time.June, 1),
				DueDate:  date(2025, time.June, 15),
			},

			isLoan: true,
		},
		{
			name: "returned loan derives nothing",
			loan: Loan{
				ReservedDate: date(2025, time.May, 1),
				LoanDate:     date(2025, time.May, 2),
				DueDate:      date(2025, time.May, 16),
				ReturnDate:   date(2025, time.May, 20),
			},
		},
		{
			name: "cancelled reservation derives nothing",
			loan: Loan{
				ReservedDate: date(2025, time.May, 1),
				ReturnDate:   date(2025, time.May, 3),
			},
		},
		{
			name: "empty loan derives nothing",
			loan: Loan{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.isReservation, tt.loan.IsReservation())
			assert.Equal(t, tt.isLoan, tt.loan.IsLoan())
			assert.Equal(t, tt.isOverdue, tt.loan.IsOverdue(today))
			assert.False(t, tt.loan.IsReservation() && tt.loan.IsLoan())
		})
	}
}

func TestApplyDefaultDueDate(t *testing.T) {
	t.Parallel()

	t.Run("fills due date from loan date", func(t *testing.T) {
		t.Parallel()

		loan := Loan{LoanDate: date(2025, time.June, 1)}
		loan.ApplyDefaultDueDate()

		assert.Equal(t, *date(2025, time.June, 15), *loan.DueDate)
	})

	t.Run("keeps an existing due date", func(t *testing.T) {
		t.Parallel()

		loan := Loan{
			LoanDate: date(2025, time.June, 1),
			DueDate:  date(2025, time.June, 3),
		}
		loan.ApplyDefaultDueDate()

		assert.Equal(t, *date(2025, time.June, 3), *loan.DueDate)
	})

	t.Run("no loan date means no due date", func(t *testing.T) {
		t.Parallel()

		loan := Loan{ReservedDate: date(2025, time.June, 1)}
		loan.ApplyDefaultDueDate()

		assert.Nil(t, loan.DueDate)
	})
}

func TestInstanceStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusAvailable, InstanceStatus(nil))
	assert.Equal(t, StatusReserved, InstanceStatus(&Loan{ReservedDate: date(2025, time.June, 1)}))
	assert.Equal(t, StatusOnLoan, InstanceStatus(&Loan{LoanDate: date(2025, time.June, 1)}))
	assert.Equal(t, StatusOnLoan, InstanceStatus(&Loan{
		ReservedDate: date(2025, time.June, 1),
		LoanDate:     date(2025, time.June, 2),
	}))
	assert.Equal(t, StatusUnknown, InstanceStatus(&Loan{}))
}

func TestBookIsAvailable(t *testing.T) {
	t.Parallel()

	book := &Book{}
	free := &BookInstance{ID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c1")}
	taken := &BookInstance{ID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c2")}
	openLoans := map[uuid.UUID]*Loan{taken.ID: {LoanDate: date(2025, time.June, 1)}}

	assert.False(t, book.IsAvailable(nil, nil))
	assert.False(t, book.IsAvailable([]*BookInstance{taken}, openLoans))
	assert.True(t, book.IsAvailable([]*BookInstance{taken, free}, openLoans))
}
