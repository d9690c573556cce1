package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	e := newEnv(t)

	c, rec := newContext(http.MethodPost, "/api/v1/users",
		`{"name":"Dave","email":"dave@example.com","password":"secret1","role":"FINANCE"}`)
	require.NoError(t, e.user.CreateUser(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	user := decode[UserResponse](t, rec)
	assert.Equal(t, int32(4), user.ID)
	assert.Equal(t, "finance", user.Role)
}

func TestCreateUserRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "invalid email",
			body:       `{"name":"Dave","email":"not-an-email","password":"secret1","role":"manager"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "email",
		},
		{
			name:       "short password",
			body:       `{"name":"Dave","email":"dave@example.com","password":"abc","role":"manager"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "password",
		},
		{
			name:       "unknown role",
			body:       `{"name":"Dave","email":"dave@example.com","password":"secret1","role":"admin"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "role",
		},
		{
			name:       "duplicate email",
			body:       `{"name":"Alice again","email":"alice@example.com","password":"secret1","role":"manager"}`,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			c, rec := newContext(http.MethodPost, "/api/v1/users", tt.body)
			require.NoError(t, e.user.CreateUser(c))

			assert.Equal(t, tt.wantStatus, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantStatus, problem.Status)
			if tt.wantField != "" {
				require.NotEmpty(t, problem.Errors)
				assert.Equal(t, tt.wantField, problem.Errors[0].Field)
			}
		})
	}
}

func TestGetUser(t *testing.T) {
	e := newEnv(t)

	c, rec := newContext(http.MethodGet, "/api/v1/users/2", "")
	withPathParams(c, []string{"id"}, []string{"2"})
	require.NoError(t, e.user.GetUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bob", decode[UserResponse](t, rec).Name)

	c, rec = newContext(http.MethodGet, "/api/v1/users/99", "")
	withPathParams(c, []string{"id"}, []string{"99"})
	require.NoError(t, e.user.GetUser(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newContext(http.MethodGet, "/api/v1/users/abc", "")
	withPathParams(c, []string{"id"}, []string{"abc"})
	require.NoError(t, e.user.GetUser(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUsers(t *testing.T) {
	e := newEnv(t)

	c, rec := newContext(http.MethodGet, "/api/v1/users", "")
	require.NoError(t, e.user.ListUsers(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]UserResponse](t, rec)
	assert.Len(t, users, 3)
	assert.False(t, strings.Contains(rec.Body.String(), "passwordHash"))
}
