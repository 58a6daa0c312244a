package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbriand/folio/models"
)

func TestCreateAndGetProject(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	token := authToken(t, owner)

	w := doJSON(t, r, http.MethodPost, "/api/v1/projects", token, map[string]interface{}{
		"title":       "My Project",
		"description": "A thing I built",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var project models.Project
	require.NoError(t, db.First(&project).Error)
	assert.Equal(t, owner.ID, project.UserID)
	assert.Equal(t, "My Project", project.Title)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d", project.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjectOwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	intruder := createTestUser(t, db, "intruder@example.com")

	project := models.Project{UserID: owner.ID, Title: "Private"}
	require.NoError(t, db.Create(&project).Error)

	intruderToken := authToken(t, intruder)
	path := fmt.Sprintf("/api/v1/projects/%d", project.ID)

	w := doJSON(t, r, http.MethodGet, path, intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPut, path, intruderToken, map[string]interface{}{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodDelete, path, intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Block creation on someone else's project is also rejected.
	w = doJSON(t, r, http.MethodPost, path+"/blocks", intruderToken, map[string]interface{}{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Project
	require.NoError(t, db.First(&stored, project.ID).Error)
	assert.Equal(t, "Private", stored.Title)
}

func TestCreateProjectRejectsEmptyTitle(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	token := authToken(t, owner)

	w := doJSON(t, r, http.MethodPost, "/api/v1/projects", token, map[string]interface{}{
		"title": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProjectAttachesCategories(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	token := authToken(t, owner)

	category := models.Category{Name: "Web"}
	require.NoError(t, db.Create(&category).Error)

	w := doJSON(t, r, http.MethodPost, "/api/v1/projects", token, map[string]interface{}{
		"title":        "Tagged",
		"category_ids": []uint{category.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var project models.Project
	require.NoError(t, db.Preload("Categories").First(&project).Error)
	require.Len(t, project.Categories, 1)
	assert.Equal(t, "Web", project.Categories[0].Name)
}

func TestCategoryCaseInsensitiveReuse(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	token := authToken(t, owner)

	w := doJSON(t, r, http.MethodPost, "/api/v1/categories", token, map[string]interface{}{"name": "Design"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/categories", token, map[string]interface{}{"name": "design"})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
