package routes

import (
	"time"

	"servswap/handlers"
	"servswap/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Guards are the authentication middlewares applied to route groups.
type Guards struct {
	User  gin.HandlerFunc
	Admin gin.HandlerFunc
}

// RegisterAuthRoutes registers session endpoints. Only /session is open.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, g Guards) {
	auth := api.Group("/auth", middleware.DeviceDetailsMiddleware())
	{
		auth.POST("/session", hb.Auth.SessionHandler)

		protected := auth.Group("", g.User)
		protected.POST("/logout", hb.Auth.LogoutHandler)
		protected.GET("/devices", hb.Auth.DevicesHandler)
		protected.POST("/devices/signout-others", hb.Auth.SignOutOthersHandler)
	}
}

// RegisterMemberRoutes registers every endpoint that needs a signed-in member.
func RegisterMemberRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, g Guards) {
	member := api.Group("", middleware.DeviceDetailsMiddleware(), g.User)

	users := member.Group("/users")
	{
		users.GET("/me", hb.Users.GetMeHandler)
		users.PATCH("/me", hb.Users.UpdateMeHandler)
		users.DELETE("/me", hb.Users.DeleteMeHandler)
		users.POST("/me/avatar", hb.Users.UploadAvatarHandler)
		users.POST("/me/fcm-token", hb.Users.RegisterFCMTokenHandler)
		users.GET("/search", hb.Users.SearchUsersHandler)
		users.GET("/:id", hb.Users.GetUserHandler)
		users.GET("/:id/reviews", hb.Users.ReviewsHandler)
	}

	services := member.Group("/services")
	{
		services.GET("", hb.Services.ListHandler)
		services.POST("", hb.Services.CreateHandler)
		services.GET("/:id", hb.Services.GetHandler)
		services.PATCH("/:id", hb.Services.UpdateHandler)
		services.DELETE("/:id", hb.Services.DeleteHandler)
		services.POST("/:id/images", hb.Services.UploadImageHandler)
	}

	swaps := member.Group("/swaps")
	{
		swaps.GET("", hb.Swaps.ListHandler)
		swaps.POST("", hb.Swaps.ProposeHandler)
		swaps.GET("/matches", hb.Swaps.MatchesHandler)
		swaps.GET("/:id", hb.Swaps.GetHandler)
		swaps.POST("/:id/accept", hb.Swaps.AcceptHandler())
		swaps.POST("/:id/decline", hb.Swaps.DeclineHandler())
		swaps.POST("/:id/cancel", hb.Swaps.CancelHandler())
		swaps.POST("/:id/complete", hb.Swaps.CompleteHandler())
		swaps.POST("/:id/review", hb.Swaps.ReviewHandler)
	}

	member.GET("/feed", hb.Feed.HomeHandler)
	member.GET("/feed/explore", hb.Feed.ExploreHandler)
	posts := member.Group("/posts")
	{
		posts.POST("", hb.Feed.CreatePostHandler)
		posts.DELETE("/:id", hb.Feed.DeletePostHandler)
		posts.POST("/:id/like", hb.Feed.LikeHandler)
		posts.DELETE("/:id/like", hb.Feed.UnlikeHandler)
		posts.GET("/:id/comments", hb.Feed.ListCommentsHandler)
		posts.POST("/:id/comments", hb.Feed.CommentHandler)
	}

	connections := member.Group("/connections")
	{
		connections.GET("", hb.Connections.ListHandler)
		connections.POST("", hb.Connections.RequestHandler)
		connections.GET("/pending", hb.Connections.PendingHandler)
		connections.GET("/status/:userId", hb.Connections.StatusHandler)
		connections.POST("/:id/respond", hb.Connections.RespondHandler)
		connections.DELETE("/:id", hb.Connections.RemoveHandler)
	}

	messages := member.Group("/messages")
	{
		messages.GET("", hb.Connections.ConversationsHandler)
		messages.POST("", hb.Connections.SendMessageHandler)
		messages.GET("/:conversationId", hb.Connections.MessagesHandler)
		messages.POST("/:conversationId/read", hb.Connections.MarkConversationReadHandler)
	}

	notifications := member.Group("/notifications")
	{
		notifications.GET("", hb.Notifications.ListHandler)
		notifications.GET("/unread-count", hb.Notifications.UnreadCountHandler)
		notifications.POST("/read-all", hb.Notifications.MarkAllReadHandler)
		notifications.POST("/:id/read", hb.Notifications.MarkReadHandler)
		notifications.DELETE("/:id", hb.Notifications.DeleteHandler)
	}

	sub := member.Group("/subscription")
	{
		sub.GET("", hb.Subscriptions.StatusHandler)
		sub.POST("/checkout", hb.Subscriptions.CheckoutHandler)
		sub.POST("/portal", hb.Subscriptions.PortalHandler)
		sub.POST("/cancel", hb.Subscriptions.CancelHandler)
	}

	assistant := member.Group("/assistant")
	{
		assistant.POST("/ask", hb.Assistant.AskHandler)
		assistant.POST("/voice", hb.Assistant.VoiceHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for moderators.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, g Guards) {
	admin := api.Group("/admin", g.Admin)
	{
		admin.GET("/users", hb.Admin.ListUsersHandler)
		admin.POST("/users/:id/suspend", hb.Admin.SuspendHandler)
		admin.POST("/users/:id/unsuspend", hb.Admin.UnsuspendHandler)
		admin.GET("/stats", hb.Admin.StatsHandler)
		admin.DELETE("/services/:id", hb.Admin.TakeDownServiceHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, g Guards) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Device-ID", "X-Device-Name"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthHandler)

	api := r.Group("/api")
	api.GET("/legal", hb.Admin.LegalHandler)
	api.POST("/webhooks/stripe", hb.Subscriptions.WebhookHandler)

	RegisterAuthRoutes(api, hb, g)
	RegisterAdminRoutes(api, hb, g)
	RegisterMemberRoutes(api, hb, g)
}
