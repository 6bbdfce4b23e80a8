package sessions

import (
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/pkg/models"
	"github.com/pkg/errors"
)

// CookieName is the browser cookie that carries the session token.
const CookieName = "openshelf_prefs"

const contextKey = "browse_session"

// Middleware loads the browse session for the request, if one exists.
type Middleware struct {
	sessionService *Service
}

func NewMiddleware(sessionService *Service) *Middleware {
	return &Middleware{
		sessionService: sessionService,
	}
}

// Load fetches the session named by the request cookie and stores it on the
// Echo context. Anonymous requests and unknown or expired tokens proceed with
// no session at all.
func (m *Middleware) Load(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(CookieName)
		if err == nil && cookie.Value != "" {
			session, err := m.sessionService.Retrieve(c.Request().Context(), cookie.Value)
			if err != nil {
				return errors.WithStack(err)
			}
			if session != nil {
				c.Set(contextKey, session)
			}
		}
		return next(c)
	}
}

// FromEchoContext returns the browse session for the request, or nil.
func FromEchoContext(c echo.Context) *models.Session {
	session, _ := c.Get(contextKey).(*models.Session)
	return session
}

// AvailableOnly reports whether the request asked for only available copies.
func AvailableOnly(c echo.Context) bool {
	session := FromEchoContext(c)
	return session != nil && session.AvailableOnly
}
