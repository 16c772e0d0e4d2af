package routes

import (
	"civictrack-api/controllers"
	"civictrack-api/middlewares"

	"github.com/gin-gonic/gin"
)

// UploadRoutes sets up the image upload route
func UploadRoutes(r *gin.Engine) {
	r.POST("/api/upload", middlewares.AuthMiddleware(), controllers.UploadImage)
}
