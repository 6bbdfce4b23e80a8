package sessions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleHandlerCreatesSessionAndRedirects(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	h := &handler{sessionService: svc}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/toggle-available-only?next=/books?page=2", nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)

	require.NoError(t, h.toggleAvailableOnly(c))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/books?page=2", rr.Header().Get(echo.HeaderLocation))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)

	session, err := svc.Retrieve(c.Request().Context(), cookies[0].Value)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.True(t, session.AvailableOnly)
}

func TestToggleHandlerRejectsOffsiteRedirects(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	h := &handler{sessionService: svc}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/toggle-available-only?next=//evil.example", nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)

	require.NoError(t, h.toggleAvailableOnly(c))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/books", rr.Header().Get(echo.HeaderLocation))
}

func TestToggleHandlerReusesExistingSession(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, time.Hour)
	h := &handler{sessionService: svc}

	existing, err := svc.Create(context.Background())
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/toggle-available-only", nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)
	c.Set(contextKey, existing)

	require.NoError(t, h.toggleAvailableOnly(c))

	session, err := svc.Retrieve(c.Request().Context(), existing.Token)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.True(t, session.AvailableOnly)
}
