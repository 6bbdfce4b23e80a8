package catalog

import (
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/auth"
	"github.com/openshelf/openshelf/pkg/config"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/openshelf/openshelf/pkg/sessions"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers book, copy, cover, and stats routes. Browsing is
// public; mutation requires catalog write permission.
func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware, sessionMiddleware *sessions.Middleware) *Service {
	catalogService := NewService(db)

	h := &handler{
		catalogService: catalogService,
		cfg:            cfg,
	}

	write := []echo.MiddlewareFunc{
		authMiddleware.Authenticate,
		authMiddleware.RequirePermission(models.ResourceCatalog, models.OperationWrite),
	}

	e.GET("/stats", h.stats)

	e.GET("/books", h.listBooks, authMiddleware.AuthenticateOptional, sessionMiddleware.Load)
	e.GET("/books/:id", h.retrieveBook, authMiddleware.AuthenticateOptional)
	e.GET("/books/:id/cover", h.bookCover)
	e.POST("/books", h.createBook, write...)
	e.PATCH("/books/:id", h.updateBook, write...)
	e.DELETE("/books/:id", h.deleteBook, write...)
	e.POST("/books/:id/cover", h.uploadBookCover, write...)

	e.GET("/instances/:id", h.retrieveInstance)
	e.POST("/instances", h.createInstance, write...)
	e.PATCH("/instances/:id", h.updateInstance, write...)
	e.DELETE("/instances/:id", h.deleteInstance, write...)

	return catalogService
}
