package sessions

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the session toggle route and returns the service
// and its middleware so the server can load sessions globally.
func RegisterRoutes(e *echo.Echo, db *bun.DB, ttl time.Duration) (*Service, *Middleware) {
	sessionService := NewService(db, ttl)
	sessionMiddleware := NewMiddleware(sessionService)

	h := &handler{
		sessionService: sessionService,
	}

	e.GET("/toggle-available-only", h.toggleAvailableOnly, sessionMiddleware.Load)

	return sessionService, sessionMiddleware
}
