package genres

import (
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/auth"
	"github.com/openshelf/openshelf/pkg/catalog"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, catalogService *catalog.Service, authMiddleware *auth.Middleware) {
	genreService := NewService(db)

	h := &handler{
		genreService:   genreService,
		catalogService: catalogService,
	}

	write := []echo.MiddlewareFunc{
		authMiddleware.Authenticate,
		authMiddleware.RequirePermission(models.ResourceCatalog, models.OperationWrite),
	}

	e.GET("/genres", h.list)
	e.GET("/genres/:id", h.retrieve)
	e.POST("/genres", h.create, write...)
	e.PATCH("/genres/:id", h.update, write...)
	e.DELETE("/genres/:id", h.delete, write...)
}
