package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

const portfolioCacheTTL = time.Hour

// PortfolioController serves the unauthenticated public portfolio surface.
// Responses are cached in Redis and invalidated by owner mutations.
type PortfolioController struct {
	db *gorm.DB
}

// NewPortfolioController creates a new PortfolioController instance.
func NewPortfolioController(db *gorm.DB) *PortfolioController {
	return &PortfolioController{db: db}
}

// GetPortfolio returns the owner's public profile.
func (p *PortfolioController) GetPortfolio(ctx *gin.Context) {
	userID := ctx.Param("userId")
	cacheKey := fmt.Sprintf("cache:portfolio:%s:profile", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var user models.User
	if err := p.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "portfolio not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to load portfolio")
		return
	}

	payload := gin.H{
		"id":           user.ID,
		"display_name": user.DisplayName,
		"avatar_url":   user.AvatarURL,
	}
	p.cacheAndRespond(ctx, cacheKey, payload)
}

// ListProjects returns the owner's projects with categories.
func (p *PortfolioController) ListProjects(ctx *gin.Context) {
	userID := ctx.Param("userId")
	cacheKey := fmt.Sprintf("cache:portfolio:%s:projects", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	if !p.userExists(ctx, userID) {
		return
	}

	var projects []models.Project
	if err := p.db.Preload("Categories").Where("user_id = ?", userID).Order("created_at DESC").Find(&projects).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to list projects")
		return
	}

	p.cacheAndRespond(ctx, cacheKey, gin.H{"items": projects})
}

// GetProject returns one public project with its content blocks.
func (p *PortfolioController) GetProject(ctx *gin.Context) {
	userID := ctx.Param("userId")
	projectID := ctx.Param("projectId")
	cacheKey := fmt.Sprintf("cache:portfolio:%s:project:%s", userID, projectID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var project models.Project
	if err := p.db.Preload("Categories").Preload("Blocks").Where("user_id = ?", userID).First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "project not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to load project")
		return
	}

	p.cacheAndRespond(ctx, cacheKey, gin.H{"project": project})
}

// ListSkills returns the owner's bento blocks with their items.
func (p *PortfolioController) ListSkills(ctx *gin.Context) {
	userID := ctx.Param("userId")
	cacheKey := fmt.Sprintf("cache:portfolio:%s:skills", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	if !p.userExists(ctx, userID) {
		return
	}

	var blocks []models.BentoBlock
	if err := p.db.Preload("Items").Where("user_id = ?", userID).Order("created_at ASC").Find(&blocks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to list skills")
		return
	}

	p.cacheAndRespond(ctx, cacheKey, gin.H{"items": blocks})
}

// ListLinks returns the owner's social links.
func (p *PortfolioController) ListLinks(ctx *gin.Context) {
	userID := ctx.Param("userId")
	cacheKey := fmt.Sprintf("cache:portfolio:%s:links", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	if !p.userExists(ctx, userID) {
		return
	}

	var links []models.Link
	if err := p.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&links).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to list links")
		return
	}

	p.cacheAndRespond(ctx, cacheKey, gin.H{"items": links})
}

// ListExperiences returns the owner's timeline entries.
func (p *PortfolioController) ListExperiences(ctx *gin.Context) {
	userID := ctx.Param("userId")
	cacheKey := fmt.Sprintf("cache:portfolio:%s:experiences", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	if !p.userExists(ctx, userID) {
		return
	}

	var experiences []models.Experience
	if err := p.db.Where("user_id = ?", userID).Order("start_date DESC").Find(&experiences).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to list experiences")
		return
	}

	p.cacheAndRespond(ctx, cacheKey, gin.H{"items": experiences})
}

func (p *PortfolioController) userExists(ctx *gin.Context, userID string) bool {
	var count int64
	if err := p.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to load portfolio")
		return false
	}
	if count == 0 {
		utils.Error(ctx, http.StatusNotFound, 40410, "portfolio not found")
		return false
	}
	return true
}

// cacheAndRespond stores the full response envelope so cache hits can be
// replayed byte for byte.
func (p *PortfolioController) cacheAndRespond(ctx *gin.Context, cacheKey string, payload interface{}) {
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, portfolioCacheTTL)
	utils.Success(ctx, payload)
}
