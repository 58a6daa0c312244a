package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

// AnalyticsController exposes aggregate view counters to the portfolio owner.
type AnalyticsController struct {
	db *gorm.DB
}

// NewAnalyticsController creates a new AnalyticsController instance.
func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{db: db}
}

// GetAnalytics handles GET /analytics for the authenticated owner. A missing
// row is created zero-valued so the caller never sees a null analytics object.
// The response is the contracted `{data: ...}` shape, not the standard envelope.
func (a *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	analytics, err := a.loadOrInit(userID)
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("analytics load failed user=%d err=%v", userID, err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to load analytics")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": analytics})
}

// loadOrInit fetches the analytics row, creating a zero row atomically when
// absent. Concurrent first reads both succeed: the conflict clause makes the
// insert a no-op and the reread returns the surviving row.
func (a *AnalyticsController) loadOrInit(userID uint) (*models.PortfolioAnalytics, error) {
	var analytics models.PortfolioAnalytics
	err := a.db.Where("user_id = ?", userID).First(&analytics).Error
	if err == nil {
		return &analytics, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	zero := models.PortfolioAnalytics{UserID: userID}
	if err := a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&zero).Error; err != nil {
		return nil, err
	}

	if err := a.db.Where("user_id = ?", userID).First(&analytics).Error; err != nil {
		return nil, err
	}
	return &analytics, nil
}
