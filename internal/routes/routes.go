package routes

import (
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/handler"
	"github.com/civicvoice/civicvoice-backend/internal/middleware"
	"github.com/civicvoice/civicvoice-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	commentHandler *handler.CommentHandler,
	meetingHandler *handler.MeetingHandler,
	moderationHandler *handler.ModerationHandler,
	recommendationHandler *handler.RecommendationHandler,
	councilHandler *handler.CouncilHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
) {
	api := router.Group("/api/v1")

	// Authentication (no auth required)
	auth := api.Group("/auth")
	auth.POST("/otp", authHandler.SendOTP)
	auth.POST("/otp/verify", authHandler.VerifyOTP)

	// Meetings: listing is public, management is staff/admin only
	meetings := api.Group("/meetings")
	meetings.GET("", meetingHandler.List)
	meetings.GET("/:id", meetingHandler.Get)
	meetings.POST("", middleware.JWTAuth(jwtManager),
		middleware.RequireRole(domain.RoleStaff, domain.RoleAdmin), meetingHandler.Create)
	meetings.PATCH("/:id", middleware.JWTAuth(jwtManager),
		middleware.RequireRole(domain.RoleStaff, domain.RoleAdmin), meetingHandler.Update)

	// Comments (auth required; submission is rate limited per user)
	comments := api.Group("/comments", middleware.JWTAuth(jwtManager))
	comments.GET("", commentHandler.List)
	comments.GET("/:id", commentHandler.Get)
	comments.POST("", middleware.RateLimitPerUser(redisClient, 30), commentHandler.Create)
	comments.DELETE("/:id", commentHandler.Withdraw)

	// Moderation queue (moderator/admin only)
	moderation := api.Group("/moderation", middleware.JWTAuth(jwtManager), middleware.RequireModerator())
	moderation.GET("/queue", moderationHandler.Queue)
	moderation.GET("/stats", moderationHandler.Stats)
	moderation.POST("/comments/:id", moderationHandler.Act)
	moderation.GET("/comments/:id/history", moderationHandler.History)
	moderation.POST("/bulk", moderationHandler.Bulk)
	moderation.GET("/settings", moderationHandler.GetSettings)
	moderation.PUT("/settings", middleware.RequireRole(domain.RoleAdmin), moderationHandler.UpdateSettings)

	// Ideas forum: listing is public, writing requires auth
	recs := api.Group("/recommendations")
	recs.GET("", recommendationHandler.List)
	recs.GET("/:id", recommendationHandler.Get)
	recs.POST("", middleware.JWTAuth(jwtManager), recommendationHandler.Create)
	recs.POST("/vote", middleware.JWTAuth(jwtManager), recommendationHandler.Vote)

	// Council sentiment views (council members, staff, admin)
	council := api.Group("/council", middleware.JWTAuth(jwtManager),
		middleware.RequireRole(domain.RoleCouncilMember, domain.RoleStaff, domain.RoleAdmin))
	council.GET("/meetings/:id/dashboard", councilHandler.Dashboard)
	council.GET("/meetings/:id/export", councilHandler.Export)
}
