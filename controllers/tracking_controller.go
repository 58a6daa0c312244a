package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

// viewDedupWindow is the interval within which repeat views from the same
// fingerprint against the same owner are not counted again.
const viewDedupWindow = 30 * time.Minute

// TrackingController records anonymous portfolio views with fingerprint
// deduplication and keeps the aggregate counters current.
type TrackingController struct {
	db *gorm.DB
}

// NewTrackingController creates a new TrackingController instance.
func NewTrackingController(db *gorm.DB) *TrackingController {
	return &TrackingController{db: db}
}

type trackViewRequest struct {
	UserID  string `json:"userId"`
	IsOwner bool   `json:"isOwner"`
}

// trackViewResponse is the contracted shape of the tracking endpoint; it does
// not use the standard envelope.
type trackViewResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type viewCounts struct {
	TotalViews     int64 `json:"total_views"`
	UniqueVisitors int64 `json:"unique_visitors"`
}

// RecordView handles POST /tracking/portfolio-view.
func (t *TrackingController) RecordView(ctx *gin.Context) {
	var req trackViewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		ctx.JSON(http.StatusBadRequest, trackViewResponse{
			Success: false,
			Message: "userId is required",
			Data:    nil,
		})
		return
	}

	ownerID64, err := strconv.ParseUint(strings.TrimSpace(req.UserID), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, trackViewResponse{
			Success: false,
			Message: "userId is required",
			Data:    nil,
		})
		return
	}
	ownerID := uint(ownerID64)

	if req.IsOwner {
		ctx.JSON(http.StatusOK, trackViewResponse{
			Success: false,
			Message: "Owner views are not tracked",
			Data:    nil,
		})
		return
	}

	fingerprint := utils.VisitorFingerprint(ctx)

	if recent := t.recentView(ownerID, fingerprint); recent != nil {
		counts := t.currentCounts(ownerID)
		ctx.JSON(http.StatusOK, trackViewResponse{
			Success: false,
			Message: "View already counted in this session",
			Data:    counts,
		})
		return
	}

	now := time.Now()
	view := models.PortfolioView{
		UserID:             ownerID,
		VisitorFingerprint: fingerprint,
		SessionID:          utils.NewSessionID(),
		ViewedAt:           now,
	}

	if err := t.recordAndAggregate(&view); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("failed to record portfolio view user=%d err=%v", ownerID, err)
		}
		ctx.JSON(http.StatusInternalServerError, trackViewResponse{
			Success: false,
			Message: "Failed to record view",
			Data:    nil,
		})
		return
	}

	// Best-effort read-back; the recorded view stands even if this fails.
	counts := t.currentCounts(ownerID)
	if counts.TotalViews < 1 {
		counts.TotalViews = 1
	}
	if counts.UniqueVisitors < 1 {
		counts.UniqueVisitors = 1
	}

	ctx.JSON(http.StatusOK, trackViewResponse{
		Success: true,
		Message: "View recorded successfully",
		Data:    counts,
	})
}

// recentView returns the most recent view for (owner, fingerprint) inside the
// dedup window, or nil. The check-then-insert sequence is not serialized, so
// two near-simultaneous requests from the same visitor may both pass.
func (t *TrackingController) recentView(ownerID uint, fingerprint string) *models.PortfolioView {
	since := time.Now().Add(-viewDedupWindow)

	var view models.PortfolioView
	err := t.db.
		Where("user_id = ? AND visitor_fingerprint = ? AND viewed_at >= ?", ownerID, fingerprint, since).
		Order("viewed_at DESC").
		First(&view).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound && utils.Sugar != nil {
			utils.Sugar.Warnf("dedup check failed user=%d err=%v", ownerID, err)
		}
		return nil
	}
	return &view
}

// recordAndAggregate inserts the view row and updates the aggregate counters
// in one transaction: total_views always increments, unique_visitors only when
// the fingerprint has never been seen for this owner before.
func (t *TrackingController) recordAndAggregate(view *models.PortfolioView) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(view).Error; err != nil {
			return err
		}

		var priorViews int64
		if err := tx.Model(&models.PortfolioView{}).
			Where("user_id = ? AND visitor_fingerprint = ? AND id <> ?", view.UserID, view.VisitorFingerprint, view.ID).
			Count(&priorViews).Error; err != nil {
			return err
		}
		newVisitor := priorViews == 0

		now := view.ViewedAt
		assignments := map[string]interface{}{
			"total_views":    gorm.Expr("total_views + 1"),
			"last_viewed_at": now,
			"updated_at":     now,
		}
		if newVisitor {
			assignments["unique_visitors"] = gorm.Expr("unique_visitors + 1")
		}

		uniqueSeed := int64(0)
		if newVisitor {
			uniqueSeed = 1
		}
		analytics := models.PortfolioAnalytics{
			UserID:         view.UserID,
			TotalViews:     1,
			UniqueVisitors: uniqueSeed,
			LastViewedAt:   &now,
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).Create(&analytics).Error
	})
}

// currentCounts reads the aggregate counters, zero-defaulted when the row is
// absent or the read fails.
func (t *TrackingController) currentCounts(ownerID uint) viewCounts {
	var analytics models.PortfolioAnalytics
	err := t.db.Where("user_id = ?", ownerID).First(&analytics).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound && utils.Sugar != nil {
			utils.Sugar.Warnf("analytics read failed user=%d err=%v", ownerID, err)
		}
		return viewCounts{}
	}
	return viewCounts{
		TotalViews:     analytics.TotalViews,
		UniqueVisitors: analytics.UniqueVisitors,
	}
}
