package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mbriand/folio/config"
	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

// UploadController handles project thumbnail uploads.
type UploadController struct {
	db *gorm.DB
}

// NewUploadController creates a new UploadController instance.
func NewUploadController(db *gorm.DB) *UploadController {
	return &UploadController{db: db}
}

// UploadThumbnail validates and stores a project thumbnail image, returning
// its public URL.
func (u *UploadController) UploadThumbnail(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, utils.MaxThumbnailSize+1))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := utils.ValidateImage(data, contentType, utils.MaxThumbnailSize); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, err.Error())
		return
	}
	if contentType == "image/svg+xml" {
		data = utils.SanitizeSVG(data)
	}

	baseDir := filepath.Join(".", "static", "uploads", "thumbnails")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to create upload directory")
		return
	}

	name := utils.SafeFilename(userID, header.Filename)
	dstPath := filepath.Join(baseDir, name)
	if err := os.WriteFile(dstPath, data, 0644); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to save file")
		return
	}

	relURL := fmt.Sprintf("/static/uploads/thumbnails/%s", name)

	// Record for the periodic cleaner; the config switch gates deletion, not
	// bookkeeping.
	conf := config.Get()
	ttlMinutes := conf.UploadsSelfDestructMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	absPath, _ := filepath.Abs(dstPath)
	record := models.UploadedFile{
		FilePath: absPath,
		URL:      relURL,
		ExpireAt: time.Now().Add(time.Duration(ttlMinutes) * time.Minute),
	}
	if err := u.db.Create(&record).Error; err != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("failed to record uploaded file for cleanup: %v", err)
	}

	utils.Success(ctx, gin.H{"url": relURL})
}
