package handlers_test

import (
	"net/http"
	"testing"

	"emptio-backend/config"
	"emptio-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	r := setupServer(t)

	w := doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", user["email"])
	// self-registration always yields a customer account
	assert.Equal(t, "customer", user["role"])

	var stored models.User
	require.NoError(t, config.DB.Where("email = ?", "new@example.com").First(&stored).Error)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	// duplicate email is rejected
	w = doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Imposter",
		"email":    "new@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	r := setupServer(t)

	w := doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Login User",
		"email":    "login@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProfile(t *testing.T) {
	r := setupServer(t)
	user, token := createUser(t, models.RoleCustomer)

	w := doRequest(t, r, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	profile := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, user.Email, profile["email"])
	// password hash is never serialized
	_, hasHash := profile["passwordHash"]
	assert.False(t, hasHash)

	w = doRequest(t, r, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
