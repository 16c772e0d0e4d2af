package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"civictrack-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 5 << 20 // 5MB

var allowedImageExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true,
}

// UploadImage stores an issue photo on disk and returns the URL it will be
// served from.
func UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		fail(c, models.KindValidation, "image file is required")
		return
	}

	if file.Size > maxUploadBytes {
		fail(c, models.KindValidation, "Image must be 5MB or smaller")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		fail(c, models.KindValidation, "Only jpeg, jpg, png, gif and webp images are allowed")
		return
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		fail(c, models.KindInternal, "Failed to prepare upload directory")
		return
	}

	filename := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, filename)); err != nil {
		fail(c, models.KindInternal, "Failed to store image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": "/uploads/" + filename})
}
