package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mbriand/folio/middleware"
	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Category{},
		&models.Block{},
		&models.BentoBlock{},
		&models.BentoItem{},
		&models.Link{},
		&models.Experience{},
		&models.PortfolioView{},
		&models.PortfolioAnalytics{},
		&models.UploadedFile{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("Passw0rdOk")
	require.NoError(t, err)
	user := models.User{Email: email, PasswordHash: hash, DisplayName: "Test User"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func authToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Email, time.Hour)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// newTestRouter wires the routes under test directly so tests do not depend on
// file loggers or static assets.
func newTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")

	authController := NewAuthController(db)
	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.GET("/auth/me", middleware.AuthRequired(), authController.Me)

	trackingController := NewTrackingController(db)
	api.POST("/tracking/portfolio-view", trackingController.RecordView)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	analyticsController := NewAnalyticsController(db)
	protected.GET("/analytics", analyticsController.GetAnalytics)

	projectController := NewProjectController(db)
	protected.POST("/projects", projectController.CreateProject)
	protected.GET("/projects/:id", projectController.GetProject)
	protected.PUT("/projects/:id", projectController.UpdateProject)
	protected.DELETE("/projects/:id", projectController.DeleteProject)
	protected.POST("/projects/:id/blocks", projectController.CreateBlock)

	categoryController := NewCategoryController(db)
	protected.POST("/categories", categoryController.CreateCategory)
	protected.GET("/categories", categoryController.ListCategories)

	experienceController := NewExperienceController(db)
	protected.POST("/experiences", experienceController.CreateExperience)
	protected.PATCH("/experiences/:id", experienceController.UpdateExperience)

	return r
}

func trackView(t *testing.T, r *gin.Engine, userID string, isOwner bool, ip, ua string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"userId": userID, "isOwner": isOwner})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tracking/portfolio-view", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if ip != "" {
		req.Header.Set("X-Real-IP", ip)
	}
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
