package loans

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/migrations"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestUser(ctx context.Context, t *testing.T, db *bun.DB, username string) *models.User {
	t.Helper()

	role := new(models.Role)
	err := db.NewSelect().
		Model(role).
		Where("name = ?", models.RoleMember).
		Scan(ctx)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: "x",
		RoleID:       role.ID,
		IsActive:     true,
	}
	_, err = db.NewInsert().Model(user).Returning("*").Exec(ctx)
	require.NoError(t, err)

	return user
}

func createTestInstance(ctx context.Context, t *testing.T, db *bun.DB, title string) *models.BookInstance {
	t.Helper()

	book := &models.Book{Title: title}
	_, err := db.NewInsert().Model(book).Returning("*").Exec(ctx)
	require.NoError(t, err)

	instance := &models.BookInstance{
		ID:      uuid.New(),
		BookID:  book.ID,
		Imprint: "First edition",
	}
	_, err = db.NewInsert().Model(instance).Exec(ctx)
	require.NoError(t, err)

	return instance
}

func requireConflict(t *testing.T, err error, message string) {
	t.Helper()

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusConflict, codeErr.HTTPCode)
	assert.Equal(t, message, codeErr.Message)
}

func TestReserve(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	loan, err := svc.Reserve(ctx, user, instance.ID)
	require.NoError(t, err)

	assert.NotZero(t, loan.ID)
	assert.Equal(t, user.ID, loan.BorrowerID)
	assert.Equal(t, instance.ID, loan.BookInstanceID)
	require.NotNil(t, loan.ReservedDate)
	assert.True(t, loan.IsReservation())
	assert.Nil(t, loan.LoanDate)
	assert.Nil(t, loan.DueDate)
	assert.Nil(t, loan.ReturnDate)
}

func TestReserveLimit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	first := createTestInstance(ctx, t, db, "The Leopard")
	second := createTestInstance(ctx, t, db, "If This Is a Man")

	_, err := svc.Reserve(ctx, user, first.ID)
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, user, second.ID)
	requireConflict(t, err, "Already reached the maximum number of 1 Reserved books.")
}

func TestReserveLimitCountsCheckedOutLoans(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	first := createTestInstance(ctx, t, db, "The Leopard")
	second := createTestInstance(ctx, t, db, "If This Is a Man")

	loan, err := svc.Reserve(ctx, user, first.ID)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, loan.ID)
	require.NoError(t, err)

	count, err := countOpenReservations(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A reservation out on loan still counts until the book is returned.
	_, err = svc.Reserve(ctx, user, second.ID)
	requireConflict(t, err, "Already reached the maximum number of 1 Reserved books.")

	_, err = svc.MarkReturned(ctx, loan.ID)
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, user, second.ID)
	require.NoError(t, err)
}

func TestReserveLimitIgnoresClosedLoans(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	first := createTestInstance(ctx, t, db, "The Leopard")
	second := createTestInstance(ctx, t, db, "If This Is a Man")

	loan, err := svc.Reserve(ctx, user, first.ID)
	require.NoError(t, err)

	_, err = svc.CancelReservation(ctx, user, loan.ID)
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, user, second.ID)
	require.NoError(t, err)
}

func TestReserveUnavailableCopy(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first := createTestUser(ctx, t, db, "first")
	second := createTestUser(ctx, t, db, "second")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	_, err := svc.Reserve(ctx, first, instance.ID)
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, second, instance.ID)
	requireConflict(t, err, "Book not available")
}

func TestReserveUnknownCopy(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")

	_, err := svc.Reserve(ctx, user, uuid.New())

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusNotFound, codeErr.HTTPCode)
}

func TestCancelReservation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	loan, err := svc.Reserve(ctx, user, instance.ID)
	require.NoError(t, err)

	cancelled, err := svc.CancelReservation(ctx, user, loan.ID)
	require.NoError(t, err)

	require.NotNil(t, cancelled.ReturnDate)
	assert.Equal(t, today(), *cancelled.ReturnDate)
	assert.False(t, cancelled.IsReservation())
}

func TestCancelSomeoneElsesReservationIsANoop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	owner := createTestUser(ctx, t, db, "owner")
	other := createTestUser(ctx, t, db, "other")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	loan, err := svc.Reserve(ctx, owner, instance.ID)
	require.NoError(t, err)

	unchanged, err := svc.CancelReservation(ctx, other, loan.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.ReturnDate)

	stored, err := svc.RetrieveLoan(ctx, RetrieveLoanOptions{ID: &loan.ID})
	require.NoError(t, err)
	assert.Nil(t, stored.ReturnDate)
}

func TestCancelCheckedOutLoanIsANoop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	loan, err := svc.Reserve(ctx, user, instance.ID)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, loan.ID)
	require.NoError(t, err)

	unchanged, err := svc.CancelReservation(ctx, user, loan.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.ReturnDate)
}

func TestRenew(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	loan, err := svc.Reserve(ctx, user, instance.ID)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, loan.ID)
	require.NoError(t, err)

	renewalDate := today().AddDate(0, 0, RenewalWindowDays)
	renewed, err := svc.Renew(ctx, loan.ID, renewalDate)
	require.NoError(t, err)

	require.NotNil(t, renewed.DueDate)
	assert.Equal(t, renewalDate, *renewed.DueDate)
}

func TestRenewRejectsDatesOutsideTheWindow(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	loan, err := svc.Reserve(ctx, user, instance.ID)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, loan.ID)
	require.NoError(t, err)

	_, err = svc.Renew(ctx, loan.ID, today().AddDate(0, 0, -1))
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnprocessableEntity, codeErr.HTTPCode)
	assert.Equal(t, "Invalid date - renewal in past", codeErr.Message)

	_, err = svc.Renew(ctx, loan.ID, today().AddDate(0, 0, RenewalWindowDays+1))
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnprocessableEntity, codeErr.HTTPCode)
	assert.Equal(t, "Invalid date - renewal more than 4 weeks ahead", codeErr.Message)

	// Both window edges are valid.
	_, err = svc.Renew(ctx, loan.ID, today())
	require.NoError(t, err)
	_, err = svc.Renew(ctx, loan.ID, today().AddDate(0, 0, RenewalWindowDays))
	require.NoError(t, err)
}

func TestCheckoutAppliesDefaultDueDate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	loan, err := svc.Reserve(ctx, user, instance.ID)
	require.NoError(t, err)

	checked, err := svc.Checkout(ctx, loan.ID)
	require.NoError(t, err)

	require.NotNil(t, checked.LoanDate)
	assert.Equal(t, today(), *checked.LoanDate)
	require.NotNil(t, checked.DueDate)
	assert.Equal(t, today().AddDate(0, 0, models.DefaultLoanDays), *checked.DueDate)
	assert.True(t, checked.IsLoan())
}

func TestCheckoutRequiresAnOpenReservation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	loan, err := svc.Reserve(ctx, user, instance.ID)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, loan.ID)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, loan.ID)
	requireConflict(t, err, "Loan is not an open reservation")
}

func TestMarkReturned(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "borrower")
	instance := createTestInstance(ctx, t, db, "The Leopard")

	loan, err := svc.Reserve(ctx, user, instance.ID)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, loan.ID)
	require.NoError(t, err)

	returned, err := svc.MarkReturned(ctx, loan.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, today(), *returned.ReturnDate)

	_, err = svc.MarkReturned(ctx, loan.ID)
	requireConflict(t, err, "Loan is already closed")

	// The copy frees up once the loan closes.
	open, err := svc.OpenLoanForInstance(ctx, instance.ID)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestListLoansFiltersAndOrders(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := createTestUser(ctx, t, db, "alice")
	bob := createTestUser(ctx, t, db, "bob")

	late := createTestInstance(ctx, t, db, "Due Later")
	soon := createTestInstance(ctx, t, db, "Due Soon")
	other := createTestInstance(ctx, t, db, "Someone Else's")

	lateLoan, err := svc.Reserve(ctx, alice, late.ID)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, lateLoan.ID)
	require.NoError(t, err)
	_, err = svc.Renew(ctx, lateLoan.ID, today().AddDate(0, 0, 20))
	require.NoError(t, err)

	soonLoan, err := svc.Reserve(ctx, bob, soon.ID)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, soonLoan.ID)
	require.NoError(t, err)
	_, err = svc.Renew(ctx, soonLoan.ID, today().AddDate(0, 0, 2))
	require.NoError(t, err)

	otherLoan, err := svc.Reserve(ctx, bob, other.ID)
	require.NoError(t, err)
	returned, err := svc.Checkout(ctx, otherLoan.ID)
	require.NoError(t, err)
	_, err = svc.MarkReturned(ctx, returned.ID)
	require.NoError(t, err)

	loans, total, err := svc.ListLoansWithTotal(ctx, ListLoansOptions{OpenOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, loans, 2)
	assert.Equal(t, soonLoan.ID, loans[0].ID)
	assert.Equal(t, lateLoan.ID, loans[1].ID)
	require.NotNil(t, loans[0].BookInstance)
	require.NotNil(t, loans[0].BookInstance.Book)
	assert.Equal(t, "Due Soon", loans[0].BookInstance.Book.Title)

	aliceID := alice.ID
	mine, err := svc.ListLoans(ctx, ListLoansOptions{BorrowerID: &aliceID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, lateLoan.ID, mine[0].ID)
}
