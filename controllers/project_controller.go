package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mbriand/folio/middleware"
	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

// ProjectController manages CRUD operations for projects and their content blocks.
type ProjectController struct {
	db *gorm.DB
}

// NewProjectController creates a new ProjectController instance.
func NewProjectController(db *gorm.DB) *ProjectController {
	return &ProjectController{db: db}
}

// CreateProject allows authenticated users to create new projects.
func (p *ProjectController) CreateProject(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1"`
		Description string `json:"description"`
		Thumbnail   string `json:"thumbnail"`
		CategoryIDs []uint `json:"category_ids"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	project := models.Project{
		UserID:      userID,
		Title:       title,
		Description: utils.Sanitize(req.Description),
		Thumbnail:   strings.TrimSpace(req.Thumbnail),
	}

	if err := p.db.Create(&project).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create project")
		return
	}

	if len(req.CategoryIDs) > 0 {
		if err := p.attachCategories(&project, req.CategoryIDs); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40022, "invalid category ids")
			return
		}
	}

	invalidatePortfolioCache(userID)
	utils.Success(ctx, gin.H{"project": project})
}

// ListProjects returns the authenticated user's projects with categories.
func (p *ProjectController) ListProjects(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var projects []models.Project
	var total int64

	query := p.db.Preload("Categories").Where("user_id = ?", userID).Order("created_at DESC")
	if err := query.Model(&models.Project{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count projects")
		return
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&projects).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list projects")
		return
	}

	utils.Success(ctx, gin.H{
		"items": projects,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// GetProject returns one of the authenticated user's projects including blocks.
func (p *ProjectController) GetProject(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var project models.Project
	if err := p.db.Preload("Categories").Preload("Blocks").First(&project, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "project not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load project")
		return
	}

	if project.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only access your own projects")
		return
	}

	utils.Success(ctx, gin.H{"project": project})
}

// UpdateProject allows the owner to update project fields and categories.
func (p *ProjectController) UpdateProject(ctx *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Thumbnail   *string `json:"thumbnail"`
		CategoryIDs *[]uint `json:"category_ids"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	projectID := ctx.Param("id")
	var project models.Project
	if err := p.db.First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "project not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load project")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	if project.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only update your own projects")
		return
	}

	if req.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40025, "title cannot be empty")
			return
		}
		project.Title = title
	}
	if req.Description != nil {
		project.Description = utils.Sanitize(*req.Description)
	}
	if req.Thumbnail != nil {
		project.Thumbnail = strings.TrimSpace(*req.Thumbnail)
	}

	if err := p.db.Save(&project).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update project")
		return
	}

	if req.CategoryIDs != nil {
		if err := p.attachCategories(&project, *req.CategoryIDs); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40026, "invalid category ids")
			return
		}
	}

	invalidatePortfolioCache(userID)
	utils.Success(ctx, gin.H{"project": project})
}

// DeleteProject allows the owner to delete a project and its blocks.
func (p *ProjectController) DeleteProject(ctx *gin.Context) {
	projectID := ctx.Param("id")
	var project models.Project
	if err := p.db.First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "project not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load project")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	if project.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40302, "you can only delete your own projects")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Block{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&project).Association("Categories").Clear(); err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete project")
		return
	}

	invalidatePortfolioCache(userID)
	utils.Success(ctx, gin.H{"message": "project deleted"})
}

// ListBlocks returns the content blocks of one of the user's projects.
func (p *ProjectController) ListBlocks(ctx *gin.Context) {
	project, ok := p.loadOwnedProject(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	var blocks []models.Block
	if err := p.db.Where("project_id = ?", project.ID).Order("created_at ASC").Find(&blocks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to list blocks")
		return
	}

	utils.Success(ctx, gin.H{"items": blocks})
}

// CreateBlock adds a content block to one of the user's projects.
func (p *ProjectController) CreateBlock(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid request payload")
		return
	}

	project, ok := p.loadOwnedProject(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	block := models.Block{
		ProjectID:   project.ID,
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Description: utils.Sanitize(req.Description),
		URL:         strings.TrimSpace(req.URL),
	}
	if err := p.db.Create(&block).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create block")
		return
	}

	invalidatePortfolioCache(project.UserID)
	utils.Success(ctx, gin.H{"block": block})
}

// UpdateBlock updates a content block after checking project ownership.
func (p *ProjectController) UpdateBlock(ctx *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		URL         *string `json:"url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40028, "invalid request payload")
		return
	}

	block, project, ok := p.loadOwnedBlock(ctx, ctx.Param("blockId"))
	if !ok {
		return
	}

	if req.Title != nil {
		block.Title = utils.Sanitize(strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		block.Description = utils.Sanitize(*req.Description)
	}
	if req.URL != nil {
		block.URL = strings.TrimSpace(*req.URL)
	}

	if err := p.db.Save(block).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update block")
		return
	}

	invalidatePortfolioCache(project.UserID)
	utils.Success(ctx, gin.H{"block": block})
}

// DeleteBlock removes a content block after checking project ownership.
func (p *ProjectController) DeleteBlock(ctx *gin.Context) {
	block, project, ok := p.loadOwnedBlock(ctx, ctx.Param("blockId"))
	if !ok {
		return
	}

	if err := p.db.Delete(block).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to delete block")
		return
	}

	invalidatePortfolioCache(project.UserID)
	utils.Success(ctx, gin.H{"message": "block deleted"})
}

func (p *ProjectController) attachCategories(project *models.Project, ids []uint) error {
	var categories []models.Category
	if len(ids) > 0 {
		if err := p.db.Find(&categories, ids).Error; err != nil {
			return err
		}
		if len(categories) != len(ids) {
			return gorm.ErrRecordNotFound
		}
	}
	return p.db.Model(project).Association("Categories").Replace(categories)
}

func (p *ProjectController) loadOwnedProject(ctx *gin.Context, id string) (*models.Project, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	var project models.Project
	if err := p.db.First(&project, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "project not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load project")
		return nil, false
	}

	if project.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only access your own projects")
		return nil, false
	}
	return &project, true
}

func (p *ProjectController) loadOwnedBlock(ctx *gin.Context, blockID string) (*models.Block, *models.Project, bool) {
	var block models.Block
	if err := p.db.First(&block, blockID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40405, "block not found")
			return nil, nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load block")
		return nil, nil, false
	}

	project, ok := p.loadOwnedProject(ctx, strconv.Itoa(int(block.ProjectID)))
	if !ok {
		return nil, nil, false
	}
	return &block, project, true
}

func invalidatePortfolioCache(userID uint) {
	utils.InvalidateByPrefix(fmt.Sprintf("cache:portfolio:%d", userID))
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
