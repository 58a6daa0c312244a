package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

// LinkController manages social links, including the multipart icon upload.
type LinkController struct {
	db *gorm.DB
}

// NewLinkController creates a new LinkController instance.
func NewLinkController(db *gorm.DB) *LinkController {
	return &LinkController{db: db}
}

// ListLinks returns the authenticated user's links.
func (l *LinkController) ListLinks(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var links []models.Link
	if err := l.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&links).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list links")
		return
	}

	utils.Success(ctx, gin.H{"items": links})
}

// CreateLink adds a link. The request is multipart form data so an icon image
// can ride along; the icon field is optional.
func (l *LinkController) CreateLink(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(ctx.PostForm("title")))
	url := strings.TrimSpace(ctx.PostForm("url"))
	if title == "" || url == "" {
		utils.Error(ctx, http.StatusBadRequest, 40060, "title and url are required")
		return
	}

	iconURL, errMsg := l.saveIcon(ctx, userID)
	if errMsg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, errMsg)
		return
	}

	link := models.Link{
		UserID: userID,
		Title:  title,
		URL:    url,
		Icon:   iconURL,
	}
	if err := l.db.Create(&link).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create link")
		return
	}

	invalidatePortfolioCache(userID)
	utils.Success(ctx, gin.H{"link": link})
}

// UpdateLink edits a link; a new icon replaces the previous one.
func (l *LinkController) UpdateLink(ctx *gin.Context) {
	link, ok := l.loadOwnedLink(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	if title := strings.TrimSpace(ctx.PostForm("title")); title != "" {
		link.Title = utils.Sanitize(title)
	}
	if url := strings.TrimSpace(ctx.PostForm("url")); url != "" {
		link.URL = url
	}

	iconURL, errMsg := l.saveIcon(ctx, link.UserID)
	if errMsg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, errMsg)
		return
	}
	if iconURL != "" {
		link.Icon = iconURL
	}

	if err := l.db.Save(link).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to update link")
		return
	}

	invalidatePortfolioCache(link.UserID)
	utils.Success(ctx, gin.H{"link": link})
}

// DeleteLink removes a link.
func (l *LinkController) DeleteLink(ctx *gin.Context) {
	link, ok := l.loadOwnedLink(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	if err := l.db.Delete(link).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to delete link")
		return
	}

	invalidatePortfolioCache(link.UserID)
	utils.Success(ctx, gin.H{"message": "link deleted"})
}

// saveIcon validates and stores an optional icon upload, returning its public
// URL. An empty error string means success; an empty URL means no icon field.
func (l *LinkController) saveIcon(ctx *gin.Context, userID uint) (string, string) {
	file, header, err := ctx.Request.FormFile("icon")
	if err != nil {
		return "", ""
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, utils.MaxIconSize+1))
	if err != nil {
		return "", "failed to read icon"
	}

	contentType := header.Header.Get("Content-Type")
	if err := utils.ValidateImage(data, contentType, utils.MaxIconSize); err != nil {
		return "", err.Error()
	}
	if contentType == "image/svg+xml" {
		data = utils.SanitizeSVG(data)
	}

	baseDir := filepath.Join(".", "static", "uploads", "icons")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return "", "failed to create upload directory"
	}

	name := utils.SafeFilename(userID, header.Filename)
	dstPath := filepath.Join(baseDir, name)
	if err := os.WriteFile(dstPath, data, 0644); err != nil {
		return "", "failed to save icon"
	}

	return fmt.Sprintf("/static/uploads/icons/%s", name), ""
}

func (l *LinkController) loadOwnedLink(ctx *gin.Context, id string) (*models.Link, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	var link models.Link
	if err := l.db.First(&link, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40460, "link not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load link")
		return nil, false
	}

	if link.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40304, "you can only access your own links")
		return nil, false
	}
	return &link, true
}

func itoa(v uint) string {
	return strconv.Itoa(int(v))
}
