package controllers

import (
	"context"
	"log"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"civictrack-api/config"
	"civictrack-api/models"
	authUtils "civictrack-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/montanaflynn/stats"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func issueCollection() *mongo.Collection   { return config.GetCollection("issues") }
func commentCollection() *mongo.Collection { return config.GetCollection("comments") }
func userCollection() *mongo.Collection    { return config.GetCollection("users") }

func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return objID, true
}

func callerRole(c *gin.Context) string {
	role, _ := c.Get("role")
	if s, ok := role.(string); ok {
		return s
	}
	return models.RoleCitizen
}

// reporterInfo resolves a user id to the display map embedded in issue
// responses.
func reporterInfo(ctx context.Context, id primitive.ObjectID) map[string]interface{} {
	info := map[string]interface{}{"id": id}
	var u models.User
	if err := userCollection().FindOne(ctx, bson.M{"_id": id}).Decode(&u); err == nil {
		info["name"] = u.Name
		info["role"] = u.Role
	}
	return info
}

func issueResponse(ctx context.Context, issue models.Issue, viewer primitive.ObjectID) gin.H {
	return gin.H{
		"id":                 issue.ID,
		"title":              issue.Title,
		"description":        issue.Description,
		"category":           issue.Category,
		"location":           issue.Location,
		"latitude":           issue.Latitude,
		"longitude":          issue.Longitude,
		"status":             issue.Status,
		"reportedBy":         reporterInfo(ctx, issue.ReportedBy),
		"assignedTo":         issue.AssignedTo,
		"priority":           issue.Priority,
		"imageUrl":           issue.ImageURL,
		"completionImageUrl": issue.CompletionImageURL,
		"upvoteCount":        issue.UpvoteCount,
		"userHasUpvoted":     issue.HasUpvoted(viewer),
		"commentCount":       issue.CommentCount,
		"createdAt":          issue.CreatedAt,
		"updatedAt":          issue.UpdatedAt,
	}
}

// CreateIssue handles the creation of a new issue
func CreateIssue(c *gin.Context) {
	reporterID, ok := callerID(c)
	if !ok {
		fail(c, models.KindUnauthenticated, "User not authenticated")
		return
	}

	var input struct {
		Title       string   `json:"title" binding:"required,max=200"`
		Description string   `json:"description" binding:"required"`
		Category    string   `json:"category" binding:"required"`
		Location    string   `json:"location" binding:"required,max=200"`
		ImageURL    *string  `json:"imageUrl,omitempty"`
		Latitude    *float64 `json:"latitude,omitempty"`
		Longitude   *float64 `json:"longitude,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	if !models.ValidCategory(input.Category) {
		fail(c, models.KindValidation, "Invalid category")
		return
	}

	// Coordinates come as a pair or not at all
	if (input.Latitude == nil) != (input.Longitude == nil) {
		fail(c, models.KindValidation, "latitude and longitude must be provided together")
		return
	}

	now := time.Now()
	issue := models.Issue{
		ID:           primitive.NewObjectID(),
		Title:        input.Title,
		Description:  input.Description,
		Category:     models.IssueCategory(input.Category),
		Location:     input.Location,
		ImageURL:     input.ImageURL,
		Status:       models.Pending,
		ReportedBy:   reporterID,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		UpvoteCount:  0,
		UpvotedBy:    []primitive.ObjectID{},
		CommentCount: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := issueCollection().InsertOne(ctx, issue)
	if err != nil {
		log.Println("Error inserting issue:", err)
		fail(c, models.KindInternal, "Failed to create issue")
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetAllIssues handles retrieving issues with filtering, search, optional
// radius filtering, sorting, and pagination
func GetAllIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	category := c.DefaultQuery("category", models.FilterAll)
	status := c.DefaultQuery("status", models.FilterAll)
	search := c.Query("search")
	sortKey := c.DefaultQuery("sort", "newest")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := bson.M{}

	if category != "" && !strings.EqualFold(category, models.FilterAll) {
		filter["category"] = category
	}
	if status != "" && !strings.EqualFold(status, models.FilterAll) {
		filter["status"] = status
	}
	if search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
			{"location": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	// Radius filter applies only when a center point is supplied
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	hasGeo := latStr != "" && lngStr != ""
	var centerLat, centerLng, radiusKm float64
	if hasGeo {
		var err1, err2 error
		centerLat, err1 = strconv.ParseFloat(latStr, 64)
		centerLng, err2 = strconv.ParseFloat(lngStr, 64)
		if err1 != nil || err2 != nil {
			fail(c, models.KindValidation, "Invalid lat/lng")
			return
		}
		radiusKm = 10
		if r := c.Query("radius"); r != "" {
			if parsed, err := strconv.ParseFloat(r, 64); err == nil && parsed >= 0 {
				radiusKm = parsed
			}
		}
		filter["latitude"] = bson.M{"$exists": true, "$ne": nil}
		filter["longitude"] = bson.M{"$exists": true, "$ne": nil}
	}

	var sortOptions bson.D
	switch sortKey {
	case "upvotes":
		sortOptions = bson.D{{Key: "upvoteCount", Value: -1}, {Key: "createdAt", Value: -1}}
	case "oldest":
		sortOptions = bson.D{{Key: "createdAt", Value: 1}}
	case "newest":
		fallthrough
	default:
		sortOptions = bson.D{{Key: "createdAt", Value: -1}}
	}

	findOptions := options.Find().SetSort(sortOptions)
	if !hasGeo {
		findOptions = findOptions.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}

	cursor, err := issueCollection().Find(ctx, filter, findOptions)
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

	var totalCount int64
	if hasGeo {
		// Distance filtering happens in-process, so pagination does too
		filtered := issues[:0]
		for _, issue := range issues {
			if issue.Latitude == nil || issue.Longitude == nil {
				continue
			}
			d := authUtils.HaversineKm(centerLat, centerLng, *issue.Latitude, *issue.Longitude)
			if d <= radiusKm {
				filtered = append(filtered, issue)
			}
		}
		issues = filtered
		totalCount = int64(len(issues))

		start := (page - 1) * limit
		if start > len(issues) {
			start = len(issues)
		}
		end := start + limit
		if end > len(issues) {
			end = len(issues)
		}
		issues = issues[start:end]
	} else {
		totalCount, err = issueCollection().CountDocuments(ctx, filter)
		if err != nil {
			fail(c, models.KindInternal, "Failed to count issues")
			return
		}
	}

	viewer, _ := callerID(c)
	results := make([]gin.H, 0, len(issues))
	for _, issue := range issues {
		results = append(results, issueResponse(ctx, issue, viewer))
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"issues":      results,
		"totalIssues": totalCount,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// NearbyIssues returns issues within a radius of the caller's position,
// annotated with their distance in km and sorted nearest first
func NearbyIssues(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		fail(c, models.KindValidation, "lat and lng query parameters are required")
		return
	}

	radiusKm := 5.0
	if r := c.Query("radius"); r != "" {
		if parsed, err := strconv.ParseFloat(r, 64); err == nil && parsed >= 0 {
			radiusKm = parsed
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{
		"latitude":  bson.M{"$exists": true, "$ne": nil},
		"longitude": bson.M{"$exists": true, "$ne": nil},
	}

	cursor, err := issueCollection().Find(ctx, filter)
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

	viewer, _ := callerID(c)

	type nearbyIssue struct {
		issue    models.Issue
		distance float64
	}
	var nearby []nearbyIssue
	for _, issue := range issues {
		d := authUtils.HaversineKm(lat, lng, *issue.Latitude, *issue.Longitude)
		if d <= radiusKm {
			nearby = append(nearby, nearbyIssue{issue: issue, distance: d})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].distance < nearby[j].distance
	})

	results := make([]gin.H, 0, len(nearby))
	for _, n := range nearby {
		resp := issueResponse(ctx, n.issue, viewer)
		resp["distanceKm"] = authUtils.RoundKm(n.distance)
		results = append(results, resp)
	}

	c.JSON(http.StatusOK, results)
}

// GetIssue retrieves an issue by its ID
func GetIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, models.KindValidation, "Invalid issue ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection().FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, models.KindNotFound, "Issue not found")
		} else {
			fail(c, models.KindInternal, "Failed to retrieve issue")
		}
		return
	}

	viewer, _ := callerID(c)
	c.JSON(http.StatusOK, issueResponse(ctx, issue, viewer))
}

// GetMyIssues retrieves all issues reported by the authenticated user
func GetMyIssues(c *gin.Context) {
	reporterID, ok := callerID(c)
	if !ok {
		fail(c, models.KindUnauthenticated, "User not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := issueCollection().Find(ctx, bson.M{"reportedBy": reporterID}, findOptions)
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

	results := make([]gin.H, 0, len(issues))
	for _, issue := range issues {
		results = append(results, issueResponse(ctx, issue, reporterID))
	}

	c.JSON(http.StatusOK, results)
}

// UpdateIssue allows the reporter (or an authority) to edit an issue's
// descriptive fields. Status changes go through the status endpoints.
func UpdateIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, models.KindValidation, "Invalid issue ID")
		return
	}

	userObjID, ok := callerID(c)
	if !ok {
		fail(c, models.KindUnauthenticated, "User not authenticated")
		return
	}

	var input struct {
		Title       *string  `json:"title,omitempty"`
		Description *string  `json:"description,omitempty"`
		Category    *string  `json:"category,omitempty"`
		Location    *string  `json:"location,omitempty"`
		ImageURL    *string  `json:"imageUrl,omitempty"`
		Latitude    *float64 `json:"latitude,omitempty"`
		Longitude   *float64 `json:"longitude,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection().FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, models.KindNotFound, "Issue not found")
		} else {
			fail(c, models.KindInternal, "Failed to retrieve issue")
		}
		return
	}

	if issue.ReportedBy != userObjID && callerRole(c) != models.RoleAuthority {
		fail(c, models.KindForbidden, "You are not authorized to update this issue")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Title != nil {
		if *input.Title == "" || len(*input.Title) > 200 {
			fail(c, models.KindValidation, "Invalid title")
			return
		}
		update["title"] = *input.Title
	}
	if input.Description != nil {
		if *input.Description == "" {
			fail(c, models.KindValidation, "Description cannot be empty")
			return
		}
		update["description"] = *input.Description
	}
	if input.Category != nil {
		if !models.ValidCategory(*input.Category) {
			fail(c, models.KindValidation, "Invalid category")
			return
		}
		update["category"] = *input.Category
	}
	if input.Location != nil {
		update["location"] = *input.Location
	}
	if input.ImageURL != nil {
		update["imageUrl"] = input.ImageURL
	}
	if input.Latitude != nil {
		update["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		update["longitude"] = *input.Longitude
	}

	_, err = issueCollection().UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": update})
	if err != nil {
		fail(c, models.KindInternal, "Failed to update issue")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue updated successfully"})
}

// UpdateIssueStatus moves an issue along the linear lifecycle
// (Pending -> In Progress -> Resolved, rejection from any non-terminal
// state). Authority only; arbitrary jumps go through OverrideIssueStatus.
func UpdateIssueStatus(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, models.KindValidation, "Invalid issue ID")
		return
	}

	var input struct {
		Status             string  `json:"status" binding:"required"`
		AssignedTo         *string `json:"assignedTo,omitempty"`
		Priority           *string `json:"priority,omitempty"`
		CompletionImageURL *string `json:"completionImageUrl,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	if !models.ValidStatus(input.Status) {
		fail(c, models.KindValidation, "Invalid status")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection().FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, models.KindNotFound, "Issue not found")
		} else {
			fail(c, models.KindInternal, "Failed to retrieve issue")
		}
		return
	}

	newStatus := models.IssueStatus(input.Status)
	if !models.CanTransition(issue.Status, newStatus) {
		fail(c, models.KindValidation, "Invalid status transition from "+string(issue.Status)+" to "+input.Status)
		return
	}

	update := bson.M{"status": newStatus, "updatedAt": time.Now()}
	if input.AssignedTo != nil {
		update["assignedTo"] = *input.AssignedTo
	}
	if input.Priority != nil {
		update["priority"] = *input.Priority
	}
	if input.CompletionImageURL != nil {
		update["completionImageUrl"] = input.CompletionImageURL
	}

	_, err = issueCollection().UpdateOne(ctx, bson.M{"_id": issueID}, bson.M{"$set": update})
	if err != nil {
		fail(c, models.KindInternal, "Failed to update status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully", "status": newStatus})
}

// OverrideIssueStatus sets any valid status regardless of the current one.
// Authority only.
func OverrideIssueStatus(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, models.KindValidation, "Invalid issue ID")
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	if !models.ValidStatus(input.Status) {
		fail(c, models.KindValidation, "Invalid status")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := issueCollection().UpdateOne(ctx,
		bson.M{"_id": issueID},
		bson.M{"$set": bson.M{"status": input.Status, "updatedAt": time.Now()}})
	if err != nil {
		fail(c, models.KindInternal, "Failed to update status")
		return
	}
	if result.MatchedCount == 0 {
		fail(c, models.KindNotFound, "Issue not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status overridden successfully", "status": input.Status})
}

// BulkUpdateStatus applies one status to many issues at once. Unknown ids are
// silently ignored. Authority only.
func BulkUpdateStatus(c *gin.Context) {
	var input struct {
		IDs    []string `json:"ids" binding:"required,min=1"`
		Status string   `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, models.KindValidation, err.Error())
		return
	}

	switch models.IssueStatus(input.Status) {
	case models.Pending, models.InProgress, models.Resolved:
	default:
		fail(c, models.KindValidation, "Invalid status")
		return
	}

	objIDs := make([]primitive.ObjectID, 0, len(input.IDs))
	for _, id := range input.IDs {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			objIDs = append(objIDs, objID)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := issueCollection().UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": objIDs}},
		bson.M{"$set": bson.M{"status": input.Status, "updatedAt": time.Now()}})
	if err != nil {
		fail(c, models.KindInternal, "Failed to update issues")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matched":  result.MatchedCount,
		"modified": result.ModifiedCount,
	})
}

// DeleteIssue removes an issue. The reporter may delete it while still
// Pending; an authority may delete it in any status. Comments cascade.
func DeleteIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, models.KindValidation, "Invalid issue ID")
		return
	}

	userObjID, ok := callerID(c)
	if !ok {
		fail(c, models.KindUnauthenticated, "User not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection().FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(c, models.KindNotFound, "Issue not found")
		} else {
			fail(c, models.KindInternal, "Failed to retrieve issue")
		}
		return
	}

	if !issue.CanDelete(userObjID, callerRole(c)) {
		fail(c, models.KindForbidden, "You are not authorized to delete this issue")
		return
	}

	_, err = issueCollection().DeleteOne(ctx, bson.M{"_id": issueID})
	if err != nil {
		fail(c, models.KindInternal, "Failed to delete issue")
		return
	}

	// Cascade associated comments
	_, _ = commentCollection().DeleteMany(ctx, bson.M{"issueId": issueID})

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// ToggleUpvote flips the caller's upvote on an issue. Each branch is a single
// conditional update guarded by current ledger membership, so concurrent
// toggles cannot lose updates and upvoteCount always tracks the set.
func ToggleUpvote(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, models.KindValidation, "Invalid issue ID")
		return
	}

	userObjID, ok := callerID(c)
	if !ok {
		fail(c, models.KindUnauthenticated, "User not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	voted := false
	applied := false
	// One retry in case a concurrent toggle moves the membership between the
	// two conditional updates.
	for attempt := 0; attempt < 2 && !applied; attempt++ {
		res, err := issueCollection().UpdateOne(ctx,
			bson.M{"_id": issueID, "upvotedBy": bson.M{"$ne": userObjID}},
			bson.M{
				"$addToSet": bson.M{"upvotedBy": userObjID},
				"$inc":      bson.M{"upvoteCount": 1},
				"$set":      bson.M{"updatedAt": time.Now()},
			})
		if err != nil {
			fail(c, models.KindInternal, "Failed to cast upvote")
			return
		}
		if res.ModifiedCount == 1 {
			voted = true
			applied = true
			break
		}

		res, err = issueCollection().UpdateOne(ctx,
			bson.M{"_id": issueID, "upvotedBy": userObjID},
			bson.M{
				"$pull": bson.M{"upvotedBy": userObjID},
				"$inc":  bson.M{"upvoteCount": -1},
				"$set":  bson.M{"updatedAt": time.Now()},
			})
		if err != nil {
			fail(c, models.KindInternal, "Failed to remove upvote")
			return
		}
		if res.ModifiedCount == 1 {
			voted = false
			applied = true
			break
		}

		// Neither branch matched: the issue is gone, or both guards raced.
		count, err := issueCollection().CountDocuments(ctx, bson.M{"_id": issueID})
		if err == nil && count == 0 {
			fail(c, models.KindNotFound, "Issue not found")
			return
		}
	}

	if !applied {
		fail(c, models.KindConflict, "Upvote state changed concurrently, please retry")
		return
	}

	// Defensive clamp; the guarded updates should never drive the count
	// negative.
	_, _ = issueCollection().UpdateOne(ctx,
		bson.M{"_id": issueID, "upvoteCount": bson.M{"$lt": 0}},
		bson.M{"$set": bson.M{"upvoteCount": 0}})

	var issue models.Issue
	if err := issueCollection().FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
		fail(c, models.KindInternal, "Failed to retrieve issue")
		return
	}

	message := "Upvote removed successfully"
	if voted {
		message = "Upvote cast successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        message,
		"userHasUpvoted": voted,
		"upvoteCount":    issue.UpvoteCount,
	})
}

// GetIssueAnalytics returns aggregate numbers about the issue set. Authority
// only; computed fresh from the store on every call.
func GetIssueAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	totalIssues, err := issueCollection().CountDocuments(ctx, bson.M{})
	if err != nil {
		fail(c, models.KindInternal, "Failed to count issues")
		return
	}

	byStatus := gin.H{}
	for _, status := range []models.IssueStatus{models.Pending, models.InProgress, models.Resolved, models.Rejected} {
		count, err := issueCollection().CountDocuments(ctx, bson.M{"status": status})
		if err != nil {
			count = 0
		}
		byStatus[string(status)] = count
	}

	categoryPipeline := []bson.M{
		{"$group": bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"count": -1}},
		{"$project": bson.M{"name": "$_id", "value": "$count", "_id": 0}},
	}
	categoryCursor, err := issueCollection().Aggregate(ctx, categoryPipeline)
	if err != nil {
		fail(c, models.KindInternal, "Failed to get category analytics")
		return
	}
	defer categoryCursor.Close(ctx)

	var issuesByCategory []bson.M
	if err := categoryCursor.All(ctx, &issuesByCategory); err != nil {
		fail(c, models.KindInternal, "Failed to decode category analytics")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -30)
	createdLast30, err := issueCollection().CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": cutoff}})
	if err != nil {
		createdLast30 = 0
	}
	resolvedLast30, err := issueCollection().CountDocuments(ctx, bson.M{
		"status":    models.Resolved,
		"updatedAt": bson.M{"$gte": cutoff},
	})
	if err != nil {
		resolvedLast30 = 0
	}

	// Mean resolution time over all resolved issues, floored to whole days
	resolvedCursor, err := issueCollection().Find(ctx, bson.M{"status": models.Resolved})
	if err != nil {
		fail(c, models.KindInternal, "Failed to retrieve resolved issues")
		return
	}
	defer resolvedCursor.Close(ctx)

	var resolved []models.Issue
	if err := resolvedCursor.All(ctx, &resolved); err != nil {
		fail(c, models.KindInternal, "Failed to decode resolved issues")
		return
	}

	avgResolutionDays := 0
	if len(resolved) > 0 {
		durations := make([]float64, 0, len(resolved))
		for _, issue := range resolved {
			if issue.UpdatedAt.Before(issue.CreatedAt) {
				continue
			}
			durations = append(durations, issue.UpdatedAt.Sub(issue.CreatedAt).Hours()/24)
		}
		if len(durations) > 0 {
			if mean, err := stats.Mean(durations); err == nil {
				avgResolutionDays = int(math.Floor(mean))
			}
		}
	}

	// Top 5 issues by upvotes
	topOptions := options.Find().
		SetSort(bson.D{{Key: "upvoteCount", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(5)
	topCursor, err := issueCollection().Find(ctx, bson.M{}, topOptions)
	if err != nil {
		fail(c, models.KindInternal, "Failed to retrieve top issues")
		return
	}
	defer topCursor.Close(ctx)

	var topIssues []models.Issue
	if err := topCursor.All(ctx, &topIssues); err != nil {
		fail(c, models.KindInternal, "Failed to decode top issues")
		return
	}

	type topIssue struct {
		ID          primitive.ObjectID `json:"id"`
		Title       string             `json:"title"`
		Category    string             `json:"category"`
		Status      string             `json:"status"`
		UpvoteCount int                `json:"upvoteCount"`
	}
	topUpvoted := make([]topIssue, 0, len(topIssues))
	for _, issue := range topIssues {
		topUpvoted = append(topUpvoted, topIssue{
			ID:          issue.ID,
			Title:       issue.Title,
			Category:    string(issue.Category),
			Status:      string(issue.Status),
			UpvoteCount: issue.UpvoteCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"totalIssues":       totalIssues,
		"byStatus":          byStatus,
		"issuesByCategory":  issuesByCategory,
		"createdLast30Days": createdLast30,
		"resolvedLast30Days": resolvedLast30,
		"avgResolutionDays": avgResolutionDays,
		"topUpvotedIssues":  topUpvoted,
	})
}
