package authors

import (
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/auth"
	"github.com/openshelf/openshelf/pkg/catalog"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, catalogService *catalog.Service, authMiddleware *auth.Middleware) {
	authorService := NewService(db)

	h := &handler{
		authorService:  authorService,
		catalogService: catalogService,
	}

	write := []echo.MiddlewareFunc{
		authMiddleware.Authenticate,
		authMiddleware.RequirePermission(models.ResourceCatalog, models.OperationWrite),
	}

	e.GET("/authors", h.list)
	e.GET("/authors/:id", h.retrieve)
	e.POST("/authors", h.create, write...)
	e.PATCH("/authors/:id", h.update, write...)
	e.DELETE("/authors/:id", h.delete, write...)
}
