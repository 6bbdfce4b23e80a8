package loans

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/errcodes"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	loanService *Service
}

// LoanView augments a loan with its derived state for API responses.
type LoanView struct {
	*models.Loan
	IsReservation bool `json:"is_reservation"`
	IsLoan        bool `json:"is_loan"`
	IsOverdue     bool `json:"is_overdue"`
}

func newLoanView(loan *models.Loan) LoanView {
	return LoanView{
		Loan:          loan,
		IsReservation: loan.IsReservation(),
		IsLoan:        loan.IsLoan(),
		IsOverdue:     loan.IsOverdue(today()),
	}
}

func newLoanViews(loans []*models.Loan) []LoanView {
	views := make([]LoanView, len(loans))
	for i, l := range loans {
		views[i] = newLoanView(l)
	}
	return views
}

// myBooks lists the current user's loans ordered by due date.
func (h *handler) myBooks(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loans, total, err := h.loanService.ListLoansWithTotal(ctx, ListLoansOptions{
		Limit:      &params.Limit,
		Offset:     &params.Offset,
		BorrowerID: &user.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"loans": newLoanViews(loans),
		"total": total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

// allBorrowed lists every open loan. Librarians only.
func (h *handler) allBorrowed(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loans, total, err := h.loanService.ListLoansWithTotal(ctx, ListLoansOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		OpenOnly: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"loans": newLoanViews(loans),
		"total": total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

// reserve creates a reservation for a copy on behalf of the current user.
func (h *handler) reserve(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	instanceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book instance")
	}

	loan, err := h.loanService.Reserve(ctx, user, instanceID)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, newLoanView(loan)))
}

// cancel closes the current user's own reservation. Mirroring the original
// flow, cancelling someone else's loan or a checked-out loan is not an error;
// it just doesn't change anything.
func (h *handler) cancel(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	loan, err := h.loanService.CancelReservation(ctx, user, id)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, newLoanView(loan)))
}

// renewForm returns the loan with the proposed renewal date prefilled.
func (h *handler) renewForm(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	loan, err := h.loanService.RetrieveLoan(ctx, RetrieveLoanOptions{
		ID:               &id,
		IncludeRelations: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"loan":                  newLoanView(loan),
		"proposed_renewal_date": ProposedRenewalDate(today()).Format("2006-01-02"),
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

// renew sets a new due date on the loan.
func (h *handler) renew(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	params := RenewLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	renewalDate, err := time.ParseInLocation("2006-01-02", params.RenewalDate, time.UTC)
	if err != nil {
		return errcodes.ValidationError(`"renewal_date" should be in the format of YYYY-MM-DD`)
	}

	loan, err := h.loanService.Renew(ctx, id, renewalDate)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, newLoanView(loan)))
}

// checkout hands the reserved copy over to the borrower.
func (h *handler) checkout(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	loan, err := h.loanService.Checkout(ctx, id)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, newLoanView(loan)))
}

// markReturned closes an open loan.
func (h *handler) markReturned(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	loan, err := h.loanService.MarkReturned(ctx, id)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, newLoanView(loan)))
}
