package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbriand/folio/models"
)

func TestRecordViewOwnerSkipped(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")

	w := trackView(t, r, fmt.Sprint(owner.ID), true, "1.2.3.4", "UA-A")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Owner views are not tracked", body["message"])
	assert.Nil(t, body["data"])

	var count int64
	require.NoError(t, db.Model(&models.PortfolioView{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRecordViewMissingUserID(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := trackView(t, r, "", false, "1.2.3.4", "UA-A")
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "userId is required", body["message"])

	var count int64
	require.NoError(t, db.Model(&models.PortfolioView{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRecordViewCountsAndAggregates(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")

	w := trackView(t, r, fmt.Sprint(owner.ID), false, "1.2.3.4", "UA-A")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "View recorded successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["total_views"])
	assert.EqualValues(t, 1, data["unique_visitors"])

	var view models.PortfolioView
	require.NoError(t, db.First(&view).Error)
	assert.Equal(t, owner.ID, view.UserID)
	assert.Len(t, view.VisitorFingerprint, 64)
	assert.NotEmpty(t, view.SessionID)

	var analytics models.PortfolioAnalytics
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&analytics).Error)
	assert.EqualValues(t, 1, analytics.TotalViews)
	assert.EqualValues(t, 1, analytics.UniqueVisitors)
	require.NotNil(t, analytics.LastViewedAt)
}

func TestRecordViewDedupWindow(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	ownerID := fmt.Sprint(owner.ID)

	// t=0: first view counts
	w := trackView(t, r, ownerID, false, "1.2.3.4", "UA-A")
	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])

	// t=10min: same visitor within the window is skipped
	require.NoError(t, db.Model(&models.PortfolioView{}).
		Where("user_id = ?", owner.ID).
		Update("viewed_at", time.Now().Add(-10*time.Minute)).Error)

	w = trackView(t, r, ownerID, false, "1.2.3.4", "UA-A")
	body = decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "View already counted in this session", body["message"])
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["total_views"])
	assert.EqualValues(t, 1, data["unique_visitors"])

	var count int64
	require.NoError(t, db.Model(&models.PortfolioView{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// t=31min: window expired, the view counts again
	require.NoError(t, db.Model(&models.PortfolioView{}).
		Where("user_id = ?", owner.ID).
		Update("viewed_at", time.Now().Add(-31*time.Minute)).Error)

	w = trackView(t, r, ownerID, false, "1.2.3.4", "UA-A")
	body = decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data = body["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["total_views"])
	// same fingerprint: still one unique visitor
	assert.EqualValues(t, 1, data["unique_visitors"])
}

func TestRecordViewDistinctVisitorsIncrementUnique(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	ownerID := fmt.Sprint(owner.ID)

	trackView(t, r, ownerID, false, "1.2.3.4", "UA-A")
	w := trackView(t, r, ownerID, false, "5.6.7.8", "UA-B")

	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["total_views"])
	assert.EqualValues(t, 2, data["unique_visitors"])
}

func TestRecordViewSeparateOwnersTrackedIndependently(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	// Same visitor hits two portfolios; both count.
	wa := trackView(t, r, fmt.Sprint(alice.ID), false, "1.2.3.4", "UA-A")
	wb := trackView(t, r, fmt.Sprint(bob.ID), false, "1.2.3.4", "UA-A")
	assert.Equal(t, true, decodeBody(t, wa)["success"])
	assert.Equal(t, true, decodeBody(t, wb)["success"])

	var count int64
	require.NoError(t, db.Model(&models.PortfolioView{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
