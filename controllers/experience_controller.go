package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

// ExperienceController manages career and education timeline entries.
type ExperienceController struct {
	db *gorm.DB
}

// NewExperienceController creates a new ExperienceController instance.
func NewExperienceController(db *gorm.DB) *ExperienceController {
	return &ExperienceController{db: db}
}

// ListExperiences returns the authenticated user's experiences, most recent first.
func (e *ExperienceController) ListExperiences(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var experiences []models.Experience
	if err := e.db.Where("user_id = ?", userID).Order("start_date DESC").Find(&experiences).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to list experiences")
		return
	}

	utils.Success(ctx, gin.H{"items": experiences})
}

// CreateExperience adds a timeline entry.
func (e *ExperienceController) CreateExperience(ctx *gin.Context) {
	var req struct {
		Title       string  `json:"title" binding:"required,min=1"`
		Type        string  `json:"type" binding:"required"`
		Location    *string `json:"location"`
		StartDate   *string `json:"start_date"`
		EndDate     *string `json:"end_date"`
		Description *string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40071, "title cannot be empty")
		return
	}
	if !models.ValidExperienceType(req.Type) {
		utils.Error(ctx, http.StatusBadRequest, 40072, "type must be education or professional")
		return
	}
	if msg := validateExperienceDates(req.StartDate, req.EndDate); msg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40073, msg)
		return
	}

	experience := models.Experience{
		UserID:      userID,
		Title:       title,
		Type:        req.Type,
		Location:    sanitizePtr(req.Location),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: sanitizePtr(req.Description),
	}
	if err := e.db.Create(&experience).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create experience")
		return
	}

	invalidatePortfolioCache(userID)
	utils.Success(ctx, gin.H{"experience": experience})
}

// UpdateExperience edits a timeline entry. Nullable fields passed as null
// clear the stored value; absent fields are left unchanged.
func (e *ExperienceController) UpdateExperience(ctx *gin.Context) {
	var req map[string]interface{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40074, "invalid request payload")
		return
	}

	experience, ok := e.loadOwnedExperience(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	if raw, present := req["title"]; present {
		title, _ := raw.(string)
		title = utils.Sanitize(strings.TrimSpace(title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40071, "title cannot be empty")
			return
		}
		experience.Title = title
	}
	if raw, present := req["type"]; present {
		t, _ := raw.(string)
		if !models.ValidExperienceType(t) {
			utils.Error(ctx, http.StatusBadRequest, 40072, "type must be education or professional")
			return
		}
		experience.Type = t
	}
	if raw, present := req["location"]; present {
		experience.Location = sanitizePtr(stringPtrFromJSON(raw))
	}
	if raw, present := req["start_date"]; present {
		experience.StartDate = stringPtrFromJSON(raw)
	}
	if raw, present := req["end_date"]; present {
		experience.EndDate = stringPtrFromJSON(raw)
	}
	if raw, present := req["description"]; present {
		experience.Description = sanitizePtr(stringPtrFromJSON(raw))
	}

	if msg := validateExperienceDates(experience.StartDate, experience.EndDate); msg != "" {
		utils.Error(ctx, http.StatusBadRequest, 40073, msg)
		return
	}

	if err := e.db.Save(experience).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update experience")
		return
	}

	invalidatePortfolioCache(experience.UserID)
	utils.Success(ctx, gin.H{"experience": experience})
}

// DeleteExperience removes a timeline entry.
func (e *ExperienceController) DeleteExperience(ctx *gin.Context) {
	experience, ok := e.loadOwnedExperience(ctx, ctx.Param("id"))
	if !ok {
		return
	}

	if err := e.db.Delete(experience).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to delete experience")
		return
	}

	invalidatePortfolioCache(experience.UserID)
	utils.Success(ctx, gin.H{"message": "experience deleted"})
}

func (e *ExperienceController) loadOwnedExperience(ctx *gin.Context, id string) (*models.Experience, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	var experience models.Experience
	if err := e.db.First(&experience, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40470, "experience not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load experience")
		return nil, false
	}

	if experience.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40305, "you can only access your own experiences")
		return nil, false
	}
	return &experience, true
}

// validateExperienceDates checks ISO date formats and ordering. An empty
// message means the dates are acceptable.
func validateExperienceDates(start, end *string) string {
	parse := func(s *string) (time.Time, bool, string) {
		if s == nil || strings.TrimSpace(*s) == "" {
			return time.Time{}, false, ""
		}
		t, err := time.Parse("2006-01-02", *s)
		if err != nil {
			return time.Time{}, false, "dates must use YYYY-MM-DD format"
		}
		return t, true, ""
	}

	startT, hasStart, msg := parse(start)
	if msg != "" {
		return msg
	}
	endT, hasEnd, msg := parse(end)
	if msg != "" {
		return msg
	}
	if hasStart && hasEnd && endT.Before(startT) {
		return "end_date cannot be before start_date"
	}
	return ""
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := utils.Sanitize(strings.TrimSpace(*s))
	return &clean
}

func stringPtrFromJSON(raw interface{}) *string {
	if raw == nil {
		return nil
	}
	if s, ok := raw.(string); ok {
		return &s
	}
	return nil
}
