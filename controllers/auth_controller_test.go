package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbriand/folio/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":        "new@example.com",
		"password":     "Passw0rdOk",
		"display_name": "Newcomer",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	var user models.User
	require.NoError(t, db.Where("email = ?", "new@example.com").First(&user).Error)
	assert.Equal(t, "Newcomer", user.DisplayName)
	assert.NotEqual(t, "Passw0rdOk", user.PasswordHash)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "new@example.com",
		"password": "Passw0rdOk",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "new@example.com",
		"password": "WrongPass1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterEnforcesPasswordPolicy(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	weak := []string{
		"short1A",       // too short
		"alllowercase1", // no uppercase
		"ALLUPPERCASE1", // no lowercase
		"NoDigitsHere",  // no digit
	}
	for _, pw := range weak {
		w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
			"email":    "weak@example.com",
			"password": pw,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "password %q should be rejected", pw)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	createTestUser(t, db, "taken@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":    "taken@example.com",
		"password": "Passw0rdOk",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":    "not-an-email",
		"password": "Passw0rdOk",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeRequiresValidToken(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	user := createTestUser(t, db, "me@example.com")

	w := doJSON(t, r, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", authToken(t, user), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "me@example.com", data["email"])
}
