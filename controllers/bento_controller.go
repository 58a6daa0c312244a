package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

// BentoController manages the bento skill grid: titled blocks and the short
// text items inside them.
type BentoController struct {
	db *gorm.DB
}

// NewBentoController creates a new BentoController instance.
func NewBentoController(db *gorm.DB) *BentoController {
	return &BentoController{db: db}
}

// ListBlocks returns the authenticated user's bento blocks with their items.
func (b *BentoController) ListBlocks(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var blocks []models.BentoBlock
	if err := b.db.Preload("Items").Where("user_id = ?", userID).Order("created_at ASC").Find(&blocks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list bento blocks")
		return
	}

	utils.Success(ctx, gin.H{"items": blocks})
}

// CreateBlock adds a bento block for the authenticated user, optionally with
// initial items. Item insert failures are logged and do not fail the block.
func (b *BentoController) CreateBlock(ctx *gin.Context) {
	var req struct {
		Title string   `json:"title" binding:"required,min=1"`
		Items []string `json:"items"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "title cannot be empty")
		return
	}

	block := models.BentoBlock{UserID: userID, Title: title}
	if err := b.db.Create(&block).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create bento block")
		return
	}

	for _, text := range req.Items {
		content := utils.Sanitize(strings.TrimSpace(text))
		if content == "" {
			continue
		}
		item := models.BentoItem{BentoBlockID: block.ID, ContentText: content}
		if err := b.db.Create(&item).Error; err != nil {
			if utils.Sugar != nil {
				utils.Sugar.Warnf("bento item insert failed block=%d err=%v", block.ID, err)
			}
			continue
		}
		block.Items = append(block.Items, item)
	}

	invalidatePortfolioCache(userID)
	utils.Success(ctx, gin.H{"block": block})
}

// UpdateBlock renames one of the user's bento blocks.
func (b *BentoController) UpdateBlock(ctx *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid request payload")
		return
	}

	block, ok := b.loadOwnedBlock(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "title cannot be empty")
		return
	}

	block.Title = title
	if err := b.db.Save(block).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to update bento block")
		return
	}

	invalidatePortfolioCache(block.UserID)
	utils.Success(ctx, gin.H{"block": block})
}

// DeleteBlock removes a bento block and its items.
func (b *BentoController) DeleteBlock(ctx *gin.Context) {
	block, ok := b.loadOwnedBlock(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bento_block_id = ?", block.ID).Delete(&models.BentoItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(block).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to delete bento block")
		return
	}

	invalidatePortfolioCache(block.UserID)
	utils.Success(ctx, gin.H{"message": "bento block deleted"})
}

// CreateItem adds a text item to one of the user's bento blocks.
func (b *BentoController) CreateItem(ctx *gin.Context) {
	var req struct {
		ContentText string `json:"contentText" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40053, "invalid request payload")
		return
	}

	block, ok := b.loadOwnedBlock(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.ContentText))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40054, "content cannot be empty")
		return
	}

	item := models.BentoItem{BentoBlockID: block.ID, ContentText: content}
	if err := b.db.Create(&item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to create bento item")
		return
	}

	invalidatePortfolioCache(block.UserID)
	utils.Success(ctx, gin.H{"item": item})
}

// UpdateItem edits a bento item after checking block ownership.
func (b *BentoController) UpdateItem(ctx *gin.Context) {
	var req struct {
		ContentText string `json:"contentText" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40055, "invalid request payload")
		return
	}

	item, block, ok := b.loadOwnedItem(ctx, ctx.Param("itemId"))
	if !ok {
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.ContentText))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40054, "content cannot be empty")
		return
	}

	item.ContentText = content
	if err := b.db.Save(item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to update bento item")
		return
	}

	invalidatePortfolioCache(block.UserID)
	utils.Success(ctx, gin.H{"item": item})
}

// DeleteItem removes a bento item after checking block ownership.
func (b *BentoController) DeleteItem(ctx *gin.Context) {
	item, block, ok := b.loadOwnedItem(ctx, ctx.Param("itemId"))
	if !ok {
		return
	}

	if err := b.db.Delete(item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to delete bento item")
		return
	}

	invalidatePortfolioCache(block.UserID)
	utils.Success(ctx, gin.H{"message": "bento item deleted"})
}

func (b *BentoController) loadOwnedBlock(ctx *gin.Context, id string) (*models.BentoBlock, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	var block models.BentoBlock
	if err := b.db.First(&block, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40450, "bento block not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to load bento block")
		return nil, false
	}

	if block.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40303, "you can only access your own bento blocks")
		return nil, false
	}
	return &block, true
}

func (b *BentoController) loadOwnedItem(ctx *gin.Context, itemID string) (*models.BentoItem, *models.BentoBlock, bool) {
	var item models.BentoItem
	if err := b.db.First(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40451, "bento item not found")
			return nil, nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50058, "failed to load bento item")
		return nil, nil, false
	}

	block, ok := b.loadOwnedBlock(ctx, itoa(item.BentoBlockID))
	if !ok {
		return nil, nil, false
	}
	return &item, block, true
}
