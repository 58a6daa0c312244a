package main

import (
	"time"

	"github.com/mbriand/folio/config"
	"github.com/mbriand/folio/models"
	"github.com/mbriand/folio/routes"
	"github.com/mbriand/folio/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
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
	)

	r := routes.SetupRouter(db)

	// Background removal of expired uploads (best-effort)
	utils.StartUploadCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
