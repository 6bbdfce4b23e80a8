package languages

import (
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/auth"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	languageService := NewService(db)

	h := &handler{
		languageService: languageService,
	}

	write := []echo.MiddlewareFunc{
		authMiddleware.Authenticate,
		authMiddleware.RequirePermission(models.ResourceCatalog, models.OperationWrite),
	}

	e.GET("/languages", h.list)
	e.GET("/languages/:id", h.retrieve)
	e.POST("/languages", h.create, write...)
	e.PATCH("/languages/:id", h.update, write...)
	e.DELETE("/languages/:id", h.delete, write...)
}
