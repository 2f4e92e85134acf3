package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/database"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp(t, &database.MockFocusRepository{})

	protected := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		userId, ok := UserId(r.Context())
		assert.True(t, ok, "expected user id in request context")
		assert.Equal(t, 7, userId)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/account", nil)
		w := httptest.NewRecorder()

		protected(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/account", nil)
		r.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: "not-a-jwt"})
		w := httptest.NewRecorder()

		protected(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := app.createJwtForSession(types.User{Id: 7}, time.Hour)
		assert.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/account", nil)
		r.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: token})
		w := httptest.NewRecorder()

		protected(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	})
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	app := newTestApp(t, &database.MockFocusRepository{})

	h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/account", nil)
	w := httptest.NewRecorder()

	assert.NotPanics(t, func() { h.ServeHTTP(w, r) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
