package routes

import (
	"civictrack-api/controllers"
	"civictrack-api/middlewares"

	"github.com/gin-gonic/gin"
)

// AIRoutes sets up the AI assist routes
func AIRoutes(r *gin.Engine) {
	ai := r.Group("/api/ai", middlewares.AuthMiddleware())
	{
		ai.POST("/improve-description", controllers.ImproveDescription)
		ai.POST("/check-duplicates", controllers.CheckDuplicates)
		ai.POST("/analyze-priority", controllers.AnalyzePriority)
		ai.POST("/suggest-title", controllers.SuggestTitle)
	}
}
