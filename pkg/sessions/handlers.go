package sessions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	sessionService *Service
}

// toggleAvailableOnly flips the availability filter for the browser session,
// creating the session on first use, then redirects back to where the user
// came from.
func (h *handler) toggleAvailableOnly(c echo.Context) error {
	ctx := c.Request().Context()

	session := FromEchoContext(c)
	if session == nil {
		created, err := h.sessionService.Create(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		session = created
	}

	if err := h.sessionService.ToggleAvailableOnly(ctx, session); err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	next := c.QueryParam("next")
	if !isLocalURL(next) {
		next = "/books"
	}

	return errors.WithStack(c.Redirect(http.StatusFound, next))
}

// isLocalURL accepts only same-site relative paths as redirect targets.
func isLocalURL(u string) bool {
	return strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") && !strings.HasPrefix(u, "/\\")
}
