package main

import (
	"time"

	"github.com/moaboard/moaboard/config"
	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/routes"
	"github.com/moaboard/moaboard/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.WithdrawalRecord{},
		&models.Post{},
		&models.PostLike{},
		&models.Bookmark{},
		&models.PostViewMark{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Category{},
		&models.Notification{},
		&models.Report{},
		&models.Notice{},
	)

	r := routes.SetupRouter(db)

	// Background pruning of old view marks and read notifications
	utils.StartMaintenance(time.Hour)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
