package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moaboard/moaboard/config"
	"github.com/moaboard/moaboard/controllers"
	"github.com/moaboard/moaboard/middleware"
	"github.com/moaboard/moaboard/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
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
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
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

	r.Static("/uploads", cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", utils.MetricsHandler())

	authController := controllers.NewAuthController(db)
	adminController := controllers.NewAdminController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	engagementController := controllers.NewEngagementController(db)
	notificationController := controllers.NewNotificationController(db)
	reportController := controllers.NewReportController(db)
	categoryController := controllers.NewCategoryController(db)
	noticeController := controllers.NewNoticeController(db)
	uploadController := controllers.NewUploadController()
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)
	authGroup.DELETE("/me", middleware.AuthRequired(), authController.DeleteOwnAccount)

	// Public reads
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", middleware.AuthOptional(), postController.GetPost)
	api.GET("/posts/:id/comments", commentController.ListComments)
	api.GET("/users/:id/posts", postController.ListUserPosts)
	api.GET("/categories", categoryController.ListCategories)
	api.GET("/notices", noticeController.ListNotices)
	api.GET("/notices/:id", noticeController.GetNotice)
	api.GET("/stats", statsController.GetStats)
	// View counting works for anonymous readers too, dedupe only applies
	// to authenticated ones.
	api.POST("/posts/:id/view", middleware.AuthOptional(), engagementController.IncrementView)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.POST("/upload", uploadController.UploadImage)
	protected.GET("/posts/rate-limit", postController.CheckRateLimit)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", engagementController.ToggleLike)
	protected.POST("/posts/:id/bookmark", engagementController.ToggleBookmark)
	protected.GET("/bookmarks", engagementController.ListBookmarks)
	protected.POST("/posts/:id/comments", commentController.AddComment)
	protected.DELETE("/comments/:commentId", commentController.DeleteComment)
	protected.POST("/comments/:commentId/like", commentController.ToggleCommentLike)
	protected.POST("/posts/:id/report", reportController.CreateReport)
	protected.GET("/notifications", notificationController.List)
	protected.GET("/notifications/unread-count", notificationController.UnreadCount)
	protected.PATCH("/notifications/:id/read", notificationController.MarkRead)
	protected.PATCH("/notifications/read-all", notificationController.MarkAllRead)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired(db))
	admin.POST("/users", adminController.CreateUser)
	admin.GET("/users", adminController.ListUsers)
	admin.DELETE("/users/:id", adminController.DeleteUser)
	admin.GET("/withdrawals", adminController.ListWithdrawals)
	admin.PATCH("/posts/:id/pin", postController.SetPinned)
	admin.GET("/reports", reportController.ListReports)
	admin.PATCH("/reports/:id/status", reportController.UpdateReportStatus)
	admin.POST("/categories", categoryController.CreateCategory)
	admin.PATCH("/categories/:id", categoryController.UpdateCategory)
	admin.DELETE("/categories/:id", categoryController.DeleteCategory)
	admin.PUT("/categories/order", categoryController.ReorderCategories)
	admin.POST("/notices", noticeController.CreateNotice)
	admin.PUT("/notices/:id", noticeController.UpdateNotice)
	admin.DELETE("/notices/:id", noticeController.DeleteNotice)
	admin.GET("/stats", statsController.GetAdminStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
