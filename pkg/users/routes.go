package users

import (
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/auth"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers user administration routes. Librarians only.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	read := []echo.MiddlewareFunc{
		authMiddleware.Authenticate,
		authMiddleware.RequirePermission(models.ResourceUsers, models.OperationRead),
	}
	write := []echo.MiddlewareFunc{
		authMiddleware.Authenticate,
		authMiddleware.RequirePermission(models.ResourceUsers, models.OperationWrite),
	}

	e.GET("/users", h.list, read...)
	e.GET("/users/:id", h.retrieve, read...)
	e.PATCH("/users/:id", h.update, write...)
	// Any authenticated user can reset their own password; resetting someone
	// else's is checked against users write permission in the handler.
	e.POST("/users/:id/reset-password", h.resetPassword, authMiddleware.Authenticate)
	e.POST("/users/:id/deactivate", h.deactivate, write...)
	e.POST("/users/:id/reactivate", h.reactivate, write...)
}
