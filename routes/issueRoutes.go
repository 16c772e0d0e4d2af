package routes

import (
	"os"
	"strconv"

	"civictrack-api/controllers"
	"civictrack-api/middlewares"

	"github.com/gin-gonic/gin"
)

func issueDailyLimit() int {
	if v := os.Getenv("ISSUE_DAILY_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			return limit
		}
	}
	return 5
}

// IssueRoutes sets up the issue and comment routes
func IssueRoutes(r *gin.Engine) {
	issue := r.Group("/api/issue", middlewares.AuthMiddleware())
	{
		issue.POST("/create", middlewares.IssueRateLimiter(issueDailyLimit()), controllers.CreateIssue)
		issue.GET("", controllers.GetAllIssues)
		issue.GET("/mine", controllers.GetMyIssues)
		issue.GET("/nearby", controllers.NearbyIssues)
		issue.GET("/analytics", middlewares.RequireAuthority(), controllers.GetIssueAnalytics)
		issue.POST("/bulk-status", middlewares.RequireAuthority(), controllers.BulkUpdateStatus)
		issue.GET("/:id", controllers.GetIssue)
		issue.PUT("/:id", controllers.UpdateIssue)
		issue.DELETE("/:id", controllers.DeleteIssue)
		issue.POST("/:id/upvote", controllers.ToggleUpvote)
		issue.PATCH("/:id/status", middlewares.RequireAuthority(), controllers.UpdateIssueStatus)
		issue.PUT("/:id/status/override", middlewares.RequireAuthority(), controllers.OverrideIssueStatus)
		issue.POST("/:id/comments", controllers.CreateComment)
		issue.GET("/:id/comments", controllers.GetComments)
	}

	comments := r.Group("/api/comments", middlewares.AuthMiddleware())
	{
		comments.DELETE("/:id", controllers.DeleteComment)
	}
}
