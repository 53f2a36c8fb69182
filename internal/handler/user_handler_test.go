package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planillas/internal/service"
	"planillas/pkg/pagination"
)

func uintString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func TestUsersAdminOnly(t *testing.T) {
	s := newTestServer(t)
	editor := s.seed(t, "ed@example.com", "editor")

	w, _ := s.do(t, http.MethodGet, "/api/users", editor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserManagement(t *testing.T) {
	s := newTestServer(t)
	admin := s.seed(t, "admin@example.com", "admin")

	w, env := s.do(t, http.MethodPost, "/api/users", admin, service.CreateUserRequest{
		Email: "nuevo@example.com", Password: "clave123", Name: "Nuevo", Role: "viewer",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[service.UserResponse](t, env.Data)
	assert.Equal(t, "viewer", created.Role)
	assert.True(t, created.Active)

	w, env = s.do(t, http.MethodPost, "/api/users", admin, service.CreateUserRequest{
		Email: "NUEVO@example.com", Password: "clave123", Name: "Otro", Role: "viewer",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_taken", env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/users", admin, service.CreateUserRequest{
		Email: "x@example.com", Password: "clave123", Name: "X", Role: "root",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	inactive := false
	w, env = s.do(t, http.MethodPut, "/api/users/"+created.ID.String(), admin, service.UpdateUserRequest{
		Role: "editor", Active: &inactive,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[service.UserResponse](t, env.Data)
	assert.Equal(t, "editor", updated.Role)
	assert.False(t, updated.Active)
	assert.Equal(t, "Nuevo", updated.Name)

	w, env = s.do(t, http.MethodGet, "/api/users?page=1&limit=1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[pagination.Page[service.UserResponse]](t, env.Data)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Meta.Total)
	assert.Equal(t, 1, page.Meta.Limit)
}

func TestGetUserByID(t *testing.T) {
	s := newTestServer(t)
	admin := s.seed(t, "admin@example.com", "admin")

	w, _ := s.do(t, http.MethodGet, "/api/users/not-a-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/users/"+uuid.NewString(), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
