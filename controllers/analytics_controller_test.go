package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbriand/folio/models"
)

func TestGetAnalyticsLazyCreatesZeroRow(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	token := authToken(t, owner)

	w := doJSON(t, r, http.MethodGet, "/api/v1/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, owner.ID, data["user_id"])
	assert.EqualValues(t, 0, data["total_views"])
	assert.EqualValues(t, 0, data["unique_visitors"])
	assert.Nil(t, data["last_viewed_at"])
	assert.Contains(t, data, "created_at")
	assert.Contains(t, data, "updated_at")

	// Second read is idempotent: same row, no duplicate insert.
	w = doJSON(t, r, http.MethodGet, "/api/v1/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.PortfolioAnalytics{}).Where("user_id = ?", owner.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetAnalyticsRequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodGet, "/api/v1/analytics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAnalyticsReflectsRecordedViews(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	token := authToken(t, owner)

	trackView(t, r, fmt.Sprint(owner.ID), false, "1.2.3.4", "UA-A")

	w := doJSON(t, r, http.MethodGet, "/api/v1/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["total_views"])
	assert.EqualValues(t, 1, data["unique_visitors"])
	assert.NotNil(t, data["last_viewed_at"])
}
