package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all auth and account routes and returns the auth
// service plus the middleware built on top of it.
func RegisterRoutes(e *echo.Echo, db *bun.DB, jwtSecret string) (*Service, *Middleware) {
	authService := NewService(db, jwtSecret)
	authMiddleware := NewMiddleware(authService)

	h := &handler{
		authService: authService,
	}

	auth := e.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout)
	auth.GET("/me", h.me, authMiddleware.Authenticate)

	accounts := e.Group("/accounts")
	accounts.POST("/register", h.register)

	return authService, authMiddleware
}
