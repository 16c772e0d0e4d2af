package controllers

import (
	"context"
	"net/http"
	"time"

	"civictrack-api/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateComment adds a comment to an existing issue. isOfficial is derived
// from the commenter's role at creation time.
func CreateComment(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, models.KindValidation, "Invalid issue ID")
		return
	}

	authorID, ok := callerID(c)
	if !ok {
		fail(c, models.KindUnauthenticated, "User not authenticated")
		return
	}

	var input struct {
		Text string `json:"text" binding:"required,max=500"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := issueCollection().CountDocuments(ctx, bson.M{"_id": issueID})
	if err != nil {
		fail(c, models.KindInternal, "Failed to check issue")
		return
	}
	if count == 0 {
		fail(c, models.KindNotFound, "Issue not found")
		return
	}

	comment := models.Comment{
		ID:         primitive.NewObjectID(),
		IssueID:    issueID,
		AuthorID:   authorID,
		Text:       input.Text,
		IsOfficial: models.OfficialComment(callerRole(c)),
		CreatedAt:  time.Now(),
	}

	_, err = commentCollection().InsertOne(ctx, comment)
	if err != nil {
		fail(c, models.KindInternal, "Failed to create comment")
		return
	}

	// Keep the denormalized count on the issue in step
	_, _ = issueCollection().UpdateOne(ctx,
		bson.M{"_id": issueID},
		bson.M{"$inc": bson.M{"commentCount": 1}, "$set": bson.M{"updatedAt": time.Now()}})

	c.JSON(http.StatusCreated, comment)
}

// GetComments returns all comments on an issue, newest first, with the
// author's name and role attached.
func GetComments(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, models.KindValidation, "Invalid issue ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := commentCollection().Find(ctx, bson.M{"issueId": issueID}, findOptions)
	if err != nil {
		fail(c, models.KindInternal, "Failed to retrieve comments")
		return
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		fail(c, models.KindInternal, "Failed to decode comments")
		return
	}

	results := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		author := map[string]interface{}{"id": comment.AuthorID}
		var u models.User
		if err := userCollection().FindOne(ctx, bson.M{"_id": comment.AuthorID}).Decode(&u); err == nil {
			author["name"] = u.Name
			author["role"] = u.Role
		}
		results = append(results, gin.H{
			"id":         comment.ID,
			"issueId":    comment.IssueID,
			"author":     author,
			"text":       comment.Text,
			"isOfficial": comment.IsOfficial,
			"createdAt":  comment.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, results)
}

// DeleteComment removes a comment. Allowed for its author or any authority.
func DeleteComment(c *gin.Context) {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, models.KindValidation, "Invalid comment ID")
		return
	}

	userObjID, ok := callerID(c)
	if !ok {
		fail(c, models.KindUnauthenticated, "User not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var comment models.Comment
	err = commentCollection().FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, models.KindNotFound, "Comment not found")
		} else {
			fail(c, models.KindInternal, "Failed to retrieve comment")
		}
		return
	}

	if !comment.CanDeleteComment(userObjID, callerRole(c)) {
		fail(c, models.KindForbidden, "You are not authorized to delete this comment")
		return
	}

	_, err = commentCollection().DeleteOne(ctx, bson.M{"_id": commentID})
	if err != nil {
		fail(c, models.KindInternal, "Failed to delete comment")
		return
	}

	_, _ = issueCollection().UpdateOne(ctx,
		bson.M{"_id": comment.IssueID},
		bson.M{"$inc": bson.M{"commentCount": -1}})

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
