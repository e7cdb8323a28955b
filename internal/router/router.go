package router

import (
	"os"
	"strings"
	"time"

	"github.com/courier-dev/courier/internal/handlers"
	"github.com/courier-dev/courier/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func allowedOrigins() []string {
	origins := []string{"http://localhost:3000", "http://localhost:5173"}

	if extra := os.Getenv("ALLOWED_ORIGINS"); extra != "" {
		for _, origin := range strings.Split(extra, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/forgot-password", handlers.ForgotPassword)
			auth.POST("/reset-password", handlers.ResetPassword)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
			auth.POST("/change-password", middleware.AuthMiddleware(), handlers.ChangePassword)
		}

		contacts := api.Group("/contacts", middleware.AuthMiddleware())
		{
			contacts.GET("", handlers.ListContacts)
			contacts.POST("", handlers.AddContact)
			contacts.DELETE("/:contact_id", handlers.RemoveContact)
		}

		groups := api.Group("/groups", middleware.AuthMiddleware())
		{
			groups.GET("", handlers.ListGroups)
			groups.POST("", handlers.CreateGroup)
			groups.GET("/:group_id", handlers.GetGroup)
			groups.PUT("/:group_id", handlers.UpdateGroup)
			groups.DELETE("/:group_id", handlers.DeleteGroup)

			groups.POST("/:group_id/users", handlers.AddGroupUser)
			groups.DELETE("/:group_id/users/:user_id", handlers.RemoveGroupUser)
			groups.GET("/:group_id/messages", handlers.GetGroupMessages)
		}

		messages := api.Group("/messages", middleware.AuthMiddleware())
		{
			messages.GET("", handlers.ListMessages)
			messages.POST("", handlers.SendMessage)
			messages.GET("/:message_id", handlers.GetMessage)
			messages.PUT("/:message_id", handlers.UpdateMessage)
			messages.DELETE("/:message_id", handlers.DeleteMessage)
			messages.POST("/:message_id/read", handlers.MarkMessageRead)
		}

		api.GET("/conversations/:user_id", middleware.AuthMiddleware(), handlers.GetConversation)
		api.GET("/user/group-messages", middleware.AuthMiddleware(), handlers.GetUserGroupMessages)

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.POST("", handlers.CreateNotification)
			notifications.POST("/send-to-group", handlers.SendToGroup)
			notifications.GET("/:notification_id", handlers.GetNotification)
			notifications.PUT("/:notification_id", handlers.UpdateNotification)
			notifications.DELETE("/:notification_id", handlers.DeleteNotification)
			notifications.POST("/:notification_id/read", handlers.MarkNotificationRead)
		}

		api.GET("/users/:user_id/notifications", middleware.AuthMiddleware(), handlers.UserNotifications)
	}

	return r
}
