package controllers

import (
	"civictrack-api/models"

	"github.com/gin-gonic/gin"
)

// fail writes a kind+message error body so clients can branch on kind.
func fail(c *gin.Context, kind models.ErrorKind, message string) {
	c.JSON(kind.HTTPStatus(), gin.H{"kind": kind, "error": message})
}
