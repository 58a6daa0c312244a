package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbriand/folio/models"
)

func TestCreateExperienceValidatesType(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	token := authToken(t, owner)

	w := doJSON(t, r, http.MethodPost, "/api/v1/experiences", token, map[string]interface{}{
		"title": "Intern",
		"type":  "hobby",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/experiences", token, map[string]interface{}{
		"title":      "Intern",
		"type":       models.ExperienceProfessional,
		"start_date": "2023-01-01",
		"end_date":   "2023-06-30",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var exp models.Experience
	require.NoError(t, db.First(&exp).Error)
	assert.Equal(t, models.ExperienceProfessional, exp.Type)
}

func TestCreateExperienceRejectsBadDates(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	token := authToken(t, owner)

	w := doJSON(t, r, http.MethodPost, "/api/v1/experiences", token, map[string]interface{}{
		"title":      "BSc",
		"type":       models.ExperienceEducation,
		"start_date": "01/02/2023",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/experiences", token, map[string]interface{}{
		"title":      "BSc",
		"type":       models.ExperienceEducation,
		"start_date": "2023-06-01",
		"end_date":   "2023-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateExperienceNullClearsField(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	token := authToken(t, owner)

	location := "Paris"
	exp := models.Experience{
		UserID:   owner.ID,
		Title:    "Engineer",
		Type:     models.ExperienceProfessional,
		Location: &location,
	}
	require.NoError(t, db.Create(&exp).Error)

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/experiences/%d", exp.ID), token, map[string]interface{}{
		"location": nil,
		"title":    "Senior Engineer",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Experience
	require.NoError(t, db.First(&stored, exp.ID).Error)
	assert.Equal(t, "Senior Engineer", stored.Title)
	assert.Nil(t, stored.Location)
}
