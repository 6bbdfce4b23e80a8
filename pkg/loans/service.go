package loans

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/pkg/database"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveLoanOptions struct {
	ID               *int
	IncludeRelations bool
}

type ListLoansOptions struct {
	Limit      *int
	Offset     *int
	BorrowerID *int
	OpenOnly   bool

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// today returns the current date at UTC midnight. All loan dates are stored
// date-only.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (svc *Service) RetrieveLoan(ctx context.Context, opts RetrieveLoanOptions) (*models.Loan, error) {
	loan := &models.Loan{}

	q := svc.db.
		NewSelect().
		Model(loan)

	if opts.ID != nil {
		q = q.Where("ln.id = ?", *opts.ID)
	}
	if opts.IncludeRelations {
		q = q.
			Relation("Borrower").
			Relation("BookInstance").
			Relation("BookInstance.Book")
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Loan")
		}
		return nil, errors.WithStack(err)
	}

	return loan, nil
}

// OpenLoanForInstance returns the loan currently holding the given copy, or
// nil when the copy is free. At most one open loan can exist per copy.
func (svc *Service) OpenLoanForInstance(ctx context.Context, instanceID uuid.UUID) (*models.Loan, error) {
	loan := &models.Loan{}
	err := svc.db.
		NewSelect().
		Model(loan).
		Where("ln.book_instance_id = ?", instanceID).
		Where("ln.return_date IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return loan, nil
}

// countOpenReservations counts the user's open reservations: reserved and not
// yet returned. A reservation that has been checked out still counts until
// the book comes back.
func countOpenReservations(ctx context.Context, db bun.IDB, userID int) (int, error) {
	count, err := db.
		NewSelect().
		Model((*models.Loan)(nil)).
		Where("ln.borrower_id = ?", userID).
		Where("ln.reserved_date IS NOT NULL").
		Where("ln.return_date IS NULL").
		Count(ctx)
	return count, errors.WithStack(err)
}

// Reserve creates a reservation for the given copy on behalf of the user. It
// rejects users already holding their maximum number of open reservations and
// copies that are not Available. The insert runs in a transaction and the
// partial unique index on open loans closes the remaining race between the
// availability check and the insert.
func (svc *Service) Reserve(ctx context.Context, user *models.User, instanceID uuid.UUID) (*models.Loan, error) {
	var loan *models.Loan

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		count, err := countOpenReservations(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if count >= user.MaxBooks() {
			return errcodes.Conflict(fmt.Sprintf("Already reached the maximum number of %d Reserved books.", user.MaxBooks()))
		}

		instance := &models.BookInstance{}
		err = tx.NewSelect().
			Model(instance).
			Where("bi.id = ?", instanceID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book instance")
			}
			return errors.WithStack(err)
		}

		open := &models.Loan{}
		err = tx.NewSelect().
			Model(open).
			Where("ln.book_instance_id = ?", instanceID).
			Where("ln.return_date IS NULL").
			Scan(ctx)
		if err == nil {
			return errcodes.Conflict("Book not available")
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return errors.WithStack(err)
		}

		reserved := today()
		now := time.Now()
		loan = &models.Loan{
			CreatedAt:      now,
			UpdatedAt:      now,
			ReservedDate:   &reserved,
			BorrowerID:     user.ID,
			BookInstanceID: instanceID,
		}

		_, err = tx.NewInsert().Model(loan).Returning("*").Exec(ctx)
		if database.IsUniqueViolation(err) {
			// Someone else reserved this copy between the check and the insert.
			return errcodes.Conflict("Book not available")
		}
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// CancelReservation closes the user's own reservation by setting its return
// date to today. Cancelling a loan the user does not own, or one that is no
// longer a pure reservation, silently changes nothing.
func (svc *Service) CancelReservation(ctx context.Context, user *models.User, loanID int) (*models.Loan, error) {
	loan, err := svc.RetrieveLoan(ctx, RetrieveLoanOptions{ID: &loanID})
	if err != nil {
		return nil, err
	}

	if loan.BorrowerID != user.ID || !loan.IsReservation() {
		return loan, nil
	}

	returned := today()
	loan.ReturnDate = &returned
	err = svc.updateLoan(ctx, loan, "return_date")
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Renew sets a new due date on the loan after validating the date range.
func (svc *Service) Renew(ctx context.Context, loanID int, renewalDate time.Time) (*models.Loan, error) {
	if err := ValidateRenewalDate(renewalDate, today()); err != nil {
		return nil, err
	}

	loan, err := svc.RetrieveLoan(ctx, RetrieveLoanOptions{ID: &loanID})
	if err != nil {
		return nil, err
	}

	loan.DueDate = &renewalDate
	err = svc.updateLoan(ctx, loan, "due_date")
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Checkout moves a reservation to an active loan: the librarian hands the copy
// over and the due date defaults to two weeks out unless already set.
func (svc *Service) Checkout(ctx context.Context, loanID int) (*models.Loan, error) {
	loan, err := svc.RetrieveLoan(ctx, RetrieveLoanOptions{ID: &loanID})
	if err != nil {
		return nil, err
	}

	if !loan.IsReservation() {
		return nil, errcodes.Conflict("Loan is not an open reservation")
	}

	loaned := today()
	loan.LoanDate = &loaned
	loan.ApplyDefaultDueDate()
	err = svc.updateLoan(ctx, loan, "loan_date", "due_date")
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// MarkReturned closes an open loan.
func (svc *Service) MarkReturned(ctx context.Context, loanID int) (*models.Loan, error) {
	loan, err := svc.RetrieveLoan(ctx, RetrieveLoanOptions{ID: &loanID})
	if err != nil {
		return nil, err
	}

	if !loan.IsOpen() {
		return nil, errcodes.Conflict("Loan is already closed")
	}

	returned := today()
	loan.ReturnDate = &returned
	err = svc.updateLoan(ctx, loan, "return_date")
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (svc *Service) ListLoans(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, error) {
	l, _, err := svc.listLoansWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLoansWithTotal(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, int, error) {
	opts.includeTotal = true
	return svc.listLoansWithTotal(ctx, opts)
}

func (svc *Service) listLoansWithTotal(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, int, error) {
	var loans []*models.Loan
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&loans).
		Relation("BookInstance").
		Relation("BookInstance.Book").
		Order("ln.due_date ASC")

	if opts.BorrowerID != nil {
		q = q.Where("ln.borrower_id = ?", *opts.BorrowerID)
	}
	if opts.OpenOnly {
		q = q.Where("ln.return_date IS NULL")
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return loans, total, nil
}

func (svc *Service) updateLoan(ctx context.Context, loan *models.Loan, columns ...string) error {
	loan.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(loan).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Loan")
		}
		return errors.WithStack(err)
	}
	return nil
}
