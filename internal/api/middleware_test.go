package api

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ajayramola/todo-app/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	okHandler := func(app *TodoApp) http.HandlerFunc {
		return app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			userId, ok := UserId(r.Context())
			assert.True(t, ok, "expected user id in context")
			assert.Equal(t, 1, userId)
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		mockRepo := &database.MockTodoAppRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", 1).Return(database.User{Id: 1, Username: "alice"}, nil).Once()

		app, _ := newTestApp(t, mockRepo)

		token, err := app.tokens.IssueToken(1)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		okHandler(app)(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Cache-Control"), "no-store")
	})

	t.Run("missing header", func(t *testing.T) {
		app, _ := newTestApp(t, &database.MockTodoAppRepository{})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		rr := httptest.NewRecorder()
		okHandler(app)(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		app, _ := newTestApp(t, &database.MockTodoAppRepository{})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := httptest.NewRecorder()
		okHandler(app)(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		app, _ := newTestApp(t, &database.MockTodoAppRepository{})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rr := httptest.NewRecorder()
		okHandler(app)(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("deleted account revokes session", func(t *testing.T) {
		mockRepo := &database.MockTodoAppRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", 1).Return(database.User{}, sql.ErrNoRows).Once()

		app, _ := newTestApp(t, mockRepo)

		// the token itself is still valid, but the account is gone
		token, err := app.tokens.IssueToken(1)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		okHandler(app)(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestErrorHandler(t *testing.T) {
	app, _ := newTestApp(t, &database.MockTodoAppRepository{})

	panicking := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	panicking.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}

func TestBearerToken(t *testing.T) {
	tcases := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{name: "valid", header: "Bearer abc", token: "abc", ok: true},
		{name: "empty", header: "", ok: false},
		{name: "no prefix", header: "abc", ok: false},
		{name: "empty token", header: "Bearer ", ok: false},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			token, ok := bearerToken(req)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.token, token)
		})
	}
}
