package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

// CategoryController manages the shared project category vocabulary.
type CategoryController struct {
	db *gorm.DB
}

// NewCategoryController creates a new CategoryController instance.
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

// ListCategories returns all categories ordered by name.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	var categories []models.Category
	if err := c.db.Order("name ASC").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list categories")
		return
	}
	utils.Success(ctx, gin.H{"items": categories})
}

// CreateCategory creates a category, reusing an existing one on a
// case-insensitive name match instead of erroring.
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "name cannot be empty")
		return
	}

	var existing models.Category
	if err := c.db.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error; err == nil {
		utils.Success(ctx, gin.H{"category": existing})
		return
	}

	category := models.Category{Name: name}
	if err := c.db.Create(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create category")
		return
	}

	utils.Success(ctx, gin.H{"category": category})
}

// DeleteCategory removes a category and detaches it from all projects.
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	var category models.Category
	if err := c.db.First(&category, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load category")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM project_categories WHERE category_id = ?", category.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to delete category")
		return
	}

	utils.Success(ctx, gin.H{"message": "category deleted"})
}
