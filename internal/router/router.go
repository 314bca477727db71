package router

import (
	"github.com/gin-gonic/gin"
	"github.com/odvhub/odvhub-backend/config"
	"github.com/odvhub/odvhub-backend/internal/app/controller"
	"github.com/odvhub/odvhub-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	applicationController  *controller.ApplicationController
	memberController       *controller.MemberController
	notificationController *controller.NotificationController
	exportController       *controller.ExportController
	wsController           *controller.WebSocketController
	authMiddleware         *middleware.AuthMiddleware
	csrfMiddleware         *middleware.CSRFMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	applicationController *controller.ApplicationController,
	memberController *controller.MemberController,
	notificationController *controller.NotificationController,
	exportController *controller.ExportController,
	wsController *controller.WebSocketController,
	authMiddleware *middleware.AuthMiddleware,
	csrfMiddleware *middleware.CSRFMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		applicationController:  applicationController,
		memberController:       memberController,
		notificationController: notificationController,
		exportController:       exportController,
		wsController:           wsController,
		authMiddleware:         authMiddleware,
		csrfMiddleware:         csrfMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "ODV Hub API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// public surface: CSRF token issuance, submission, status check
		v1.GET("/csrf", r.csrfMiddleware.IssueToken)

		applications := v1.Group("/applications")
		{
			applications.POST("",
				r.csrfMiddleware.Protect(),
				r.applicationController.Submit,
			)
			applications.GET("/:code/status", r.applicationController.GetStatusByCode)
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		{
			adminApps := admin.Group("/applications")
			{
				adminApps.GET("",
					r.authMiddleware.RequirePermission("applications", "view"),
					r.applicationController.List,
				)
				adminApps.GET("/:id",
					r.authMiddleware.RequirePermission("applications", "view"),
					r.applicationController.GetByID,
				)
				adminApps.GET("/:id/pdf",
					r.authMiddleware.RequirePermission("applications", "view"),
					r.applicationController.DownloadPDF,
				)
				// mutating review actions carry the same single-use CSRF
				// contract as the public submission
				adminApps.POST("/:id/approve",
					r.authMiddleware.RequirePermission("applications", "edit"),
					r.csrfMiddleware.Protect(),
					r.applicationController.Approve,
				)
				adminApps.POST("/:id/reject",
					r.authMiddleware.RequirePermission("applications", "edit"),
					r.csrfMiddleware.Protect(),
					r.applicationController.Reject,
				)
				adminApps.POST("/:id/regenerate-pdf",
					r.authMiddleware.RequirePermission("applications", "edit"),
					r.csrfMiddleware.Protect(),
					r.applicationController.RegeneratePDF,
				)
				adminApps.DELETE("/:id",
					r.authMiddleware.RequirePermission("applications", "delete"),
					r.csrfMiddleware.Protect(),
					r.applicationController.Delete,
				)
			}

			members := admin.Group("/members")
			members.Use(r.authMiddleware.RequirePermission("members", "view"))
			{
				members.GET("", r.memberController.List)
				members.GET("/:id", r.memberController.GetByID)
			}

			notifications := admin.Group("/notifications")
			{
				notifications.GET("", r.notificationController.List)
				notifications.GET("/unread-count", r.notificationController.UnreadCount)
				notifications.PUT("/read-all", r.notificationController.MarkAllAsRead)
				notifications.PUT("/:id/read", r.notificationController.MarkAsRead)
			}

			exports := admin.Group("/exports")
			{
				exports.GET("/applications",
					r.authMiddleware.RequirePermission("applications", "view"),
					r.exportController.ExportApplications,
				)
				exports.GET("/members",
					r.authMiddleware.RequirePermission("members", "view"),
					r.exportController.ExportMembers,
				)
			}

			admin.GET("/ws", r.wsController.Connect)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
