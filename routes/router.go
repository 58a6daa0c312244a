package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mbriand/folio/config"
	"github.com/mbriand/folio/controllers"
	"github.com/mbriand/folio/middleware"
	"github.com/mbriand/folio/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	ginLogPath := cfg.GinPath
	gl, err := utils.NewRollingFileLogger(ginLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	projectController := controllers.NewProjectController(db)
	categoryController := controllers.NewCategoryController(db)
	bentoController := controllers.NewBentoController(db)
	linkController := controllers.NewLinkController(db)
	experienceController := controllers.NewExperienceController(db)
	portfolioController := controllers.NewPortfolioController(db)
	trackingController := controllers.NewTrackingController(db)
	analyticsController := controllers.NewAnalyticsController(db)
	uploadController := controllers.NewUploadController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/github/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/github/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// View tracking stays public so anonymous visits count
	api.POST("/tracking/portfolio-view", trackingController.RecordView)

	// Public portfolio surface
	publicGroup := api.Group("/public/portfolio")
	publicGroup.GET("/:userId", portfolioController.GetPortfolio)
	publicGroup.GET("/:userId/projects", portfolioController.ListProjects)
	publicGroup.GET("/:userId/project/:projectId", portfolioController.GetProject)
	publicGroup.GET("/:userId/skills", portfolioController.ListSkills)
	publicGroup.GET("/:userId/links", portfolioController.ListLinks)
	publicGroup.GET("/:userId/experiences", portfolioController.ListExperiences)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/analytics", analyticsController.GetAnalytics)

	protected.GET("/projects", projectController.ListProjects)
	protected.POST("/projects", projectController.CreateProject)
	protected.GET("/projects/:id", projectController.GetProject)
	protected.PUT("/projects/:id", projectController.UpdateProject)
	protected.DELETE("/projects/:id", projectController.DeleteProject)
	protected.GET("/projects/:id/blocks", projectController.ListBlocks)
	protected.POST("/projects/:id/blocks", projectController.CreateBlock)
	protected.PATCH("/blocks/:blockId", projectController.UpdateBlock)
	protected.DELETE("/blocks/:blockId", projectController.DeleteBlock)

	protected.GET("/categories", categoryController.ListCategories)
	protected.POST("/categories", categoryController.CreateCategory)
	protected.DELETE("/categories/:id", categoryController.DeleteCategory)

	protected.GET("/bento-blocks", bentoController.ListBlocks)
	protected.POST("/bento-blocks", bentoController.CreateBlock)
	protected.PATCH("/bento-blocks/:id", bentoController.UpdateBlock)
	protected.DELETE("/bento-blocks/:id", bentoController.DeleteBlock)
	protected.POST("/bento-blocks/:id/items", bentoController.CreateItem)
	protected.PATCH("/bento-items/:itemId", bentoController.UpdateItem)
	protected.DELETE("/bento-items/:itemId", bentoController.DeleteItem)

	protected.GET("/links", linkController.ListLinks)
	protected.POST("/links", linkController.CreateLink)
	protected.PATCH("/links/:id", linkController.UpdateLink)
	protected.DELETE("/links/:id", linkController.DeleteLink)

	protected.GET("/experiences", experienceController.ListExperiences)
	protected.POST("/experiences", experienceController.CreateExperience)
	protected.PATCH("/experiences/:id", experienceController.UpdateExperience)
	protected.DELETE("/experiences/:id", experienceController.DeleteExperience)

	protected.POST("/upload/thumbnail", uploadController.UploadThumbnail)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		ctx.Status(http.StatusNotFound)
	})

	return r
}
