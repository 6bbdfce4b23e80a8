package loans

import (
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/auth"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers loan and reservation routes. Everything here
// requires an authenticated user; the librarian views additionally require
// loan permissions.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	loanService := NewService(db)

	h := &handler{
		loanService: loanService,
	}

	// The librarian circulation views all hang off the mark_returned
	// permission, the single gate the lending workflow defines.
	librarian := []echo.MiddlewareFunc{
		authMiddleware.Authenticate,
		authMiddleware.RequirePermission(models.ResourceLoans, models.OperationMarkReturned),
	}

	e.GET("/mybooks", h.myBooks, authMiddleware.Authenticate)
	e.GET("/borrowed", h.allBorrowed, librarian...)

	e.POST("/instances/:id/reserve", h.reserve, authMiddleware.Authenticate)
	e.POST("/loans/:id/cancel", h.cancel, authMiddleware.Authenticate)

	e.GET("/loans/:id/renew", h.renewForm, librarian...)
	e.POST("/loans/:id/renew", h.renew, librarian...)

	e.POST("/loans/:id/checkout", h.checkout, librarian...)
	e.POST("/loans/:id/return", h.markReturned, librarian...)

	return loanService
}
