package controllers

import (
	"context"
	"net/http"
	"time"

	"civictrack-api/models"
	"civictrack-api/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var aiAssist = services.NewAIAssist(&services.OpenAIProvider{})

// ImproveDescription rewrites a draft description. Best-effort: the original
// text comes back with aiAvailable=false when the provider is down.
func ImproveDescription(c *gin.Context) {
	var input struct {
		Title       string `json:"title" binding:"required"`
		Category    string `json:"category" binding:"required"`
		Description string `json:"description" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	result := aiAssist.ImproveDescription(c.Request.Context(), input.Title, input.Category, input.Description)
	c.JSON(http.StatusOK, result)
}

// CheckDuplicates compares a draft report against recent non-resolved issues.
func CheckDuplicates(c *gin.Context) {
	var input struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required"`
		Location    string `json:"location" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Candidates are capped to bound prompt size
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(20)
	cursor, err := issueCollection().Find(ctx,
		bson.M{"status": bson.M{"$ne": models.Resolved}}, findOptions)
	if err != nil {
		fail(c, models.KindInternal, "Failed to retrieve issues")
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		fail(c, models.KindInternal, "Failed to decode issues")
		return
	}

	candidates := make([]services.DuplicateCandidate, 0, len(issues))
	for _, issue := range issues {
		candidates = append(candidates, services.DuplicateCandidate{
			ID:          issue.ID.Hex(),
			Title:       issue.Title,
			Description: issue.Description,
			Location:    issue.Location,
		})
	}

	result := aiAssist.CheckDuplicates(c.Request.Context(), input.Title, input.Description, input.Location, candidates)
	c.JSON(http.StatusOK, result)
}

// AnalyzePriority scores an issue's urgency; never fails, falls back to a
// neutral assessment.
func AnalyzePriority(c *gin.Context) {
	var input struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required"`
		Category    string `json:"category" binding:"required"`
		UpvoteCount int    `json:"upvoteCount"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	result := aiAssist.AnalyzePriority(c.Request.Context(), input.Title, input.Description, input.Category, input.UpvoteCount)
	c.JSON(http.StatusOK, result)
}

// SuggestTitle proposes candidate titles for a draft report.
func SuggestTitle(c *gin.Context) {
	var input struct {
		Title    string `json:"title" binding:"required"`
		Category string `json:"category" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	result := aiAssist.SuggestTitle(c.Request.Context(), input.Title, input.Category)
	c.JSON(http.StatusOK, result)
}
