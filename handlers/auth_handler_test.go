package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/skill_swap/database"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONRequest(t *testing.T, method, target string, body fiber.Map) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegisterAndLogin(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()

	register := fiber.Map{
		"name":     "Alice",
		"email":    "Alice@Example.COM",
		"password": "secret123",
	}
	resp, err := app.Test(newJSONRequest(t, "POST", "/api/v1/auth/register", register), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "active", user["status"])

	// Registering the same address again conflicts, regardless of case.
	resp, err = app.Test(newJSONRequest(t, "POST", "/api/v1/auth/register", register), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	login := fiber.Map{"email": "alice@example.com", "password": "secret123"}
	resp, err = app.Test(newJSONRequest(t, "POST", "/api/v1/auth/login", login), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var authCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "auth-token" {
			authCookie = cookie
		}
	}
	require.NotNil(t, authCookie)
	assert.True(t, authCookie.HttpOnly)

	body = decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])

	// The cookie alone authenticates /auth/me.
	req := newUnauthenticatedRequest("GET", "/api/v1/auth/me")
	req.AddCookie(&http.Cookie{Name: "auth-token", Value: authCookie.Value})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Alice", body["user"].(map[string]interface{})["name"])
}

func TestLogin_BadCredentials(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()

	register := fiber.Map{"name": "Alice", "email": "alice@example.com", "password": "secret123"}
	resp, err := app.Test(newJSONRequest(t, "POST", "/api/v1/auth/register", register), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"wrong password", fiber.Map{"email": "alice@example.com", "password": "nope12"}},
		{"unknown email", fiber.Map{"email": "nobody@example.com", "password": "secret123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(newJSONRequest(t, "POST", "/api/v1/auth/login", tt.body), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()
	user := createTestUser(t, "Alice", "user")

	update := fiber.Map{
		"bio":           "I teach guitar",
		"skillsOffered": []string{"Guitar"},
		"isPublic":      false,
	}
	resp, err := app.Test(authRequest(t, user, "PUT", "/api/v1/profile/me", update), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reloaded := reloadUser(t, user.ID)
	require.NotNil(t, reloaded.Bio)
	assert.Equal(t, "I teach guitar", *reloaded.Bio)
	assert.Equal(t, []string{"Guitar"}, reloaded.SkillsOffered)
	assert.False(t, reloaded.IsPublic)

	// Fields left out of the payload stay untouched.
	assert.Equal(t, "Alice", reloaded.Name)

	// Role and the rating aggregates are not writable here.
	resp, err = app.Test(authRequest(t, user, "PUT", "/api/v1/profile/me", fiber.Map{"role": "admin", "rating": 5}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	reloaded = reloadUser(t, user.ID)
	assert.Equal(t, "user", reloaded.Role)
	assert.InDelta(t, 0.0, reloaded.Rating, 0.001)
}
