package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Roads           IssueCategory = "Roads"
	WaterSupply     IssueCategory = "Water Supply"
	Electricity     IssueCategory = "Electricity"
	Garbage         IssueCategory = "Garbage"
	Streetlights    IssueCategory = "Streetlights"
	Drainage        IssueCategory = "Drainage"
	Parks           IssueCategory = "Parks"
	PublicTransport IssueCategory = "Public Transport"
	NoisePollution  IssueCategory = "Noise Pollution"
	OtherCategory   IssueCategory = "Other"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "Pending"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
	Rejected   IssueStatus = "Rejected"
)

// FilterAll is the sentinel value meaning "no filter" for status/category queries.
const FilterAll = "All"

// Issue represents a civic issue reported by a user. The upvote ledger
// (upvotedBy + upvoteCount) lives on the document so it can be toggled with a
// single conditional update; upvoteCount must always equal len(upvotedBy).
type Issue struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title              string               `bson:"title" json:"title"`
	Description        string               `bson:"description" json:"description"`
	Category           IssueCategory        `bson:"category" json:"category"`
	Location           string               `bson:"location" json:"location"`
	Latitude           *float64             `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude          *float64             `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Status             IssueStatus          `bson:"status" json:"status"`
	ReportedBy         primitive.ObjectID   `bson:"reportedBy" json:"reportedBy"`
	AssignedTo         *string              `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Priority           *string              `bson:"priority,omitempty" json:"priority,omitempty"`
	ImageURL           *string              `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CompletionImageURL *string              `bson:"completionImageUrl,omitempty" json:"completionImageUrl,omitempty"`
	UpvoteCount        int                  `bson:"upvoteCount" json:"upvoteCount"`
	UpvotedBy          []primitive.ObjectID `bson:"upvotedBy" json:"upvotedBy"`
	CommentCount       int                  `bson:"commentCount" json:"commentCount"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

var validCategories = map[IssueCategory]bool{
	Roads: true, WaterSupply: true, Electricity: true, Garbage: true,
	Streetlights: true, Drainage: true, Parks: true, PublicTransport: true,
	NoisePollution: true, OtherCategory: true,
}

var validStatuses = map[IssueStatus]bool{
	Pending: true, InProgress: true, Resolved: true, Rejected: true,
}

// ValidCategory reports whether s is one of the closed category set.
func ValidCategory(s string) bool {
	return validCategories[IssueCategory(s)]
}

// ValidStatus reports whether s is one of the four issue statuses.
func ValidStatus(s string) bool {
	return validStatuses[IssueStatus(s)]
}

// CanTransition reports whether the strict status endpoint allows moving an
// issue from one status to another. Progression is linear
// (Pending -> In Progress -> Resolved); rejection is allowed from any
// non-terminal state. Arbitrary reassignment goes through the override
// operation instead.
func CanTransition(from, to IssueStatus) bool {
	switch from {
	case Pending:
		return to == InProgress || to == Rejected
	case InProgress:
		return to == Resolved || to == Rejected
	default:
		return false
	}
}

// CanDelete reports whether the given caller may delete the issue: the
// reporter while it is still Pending, or any authority regardless of status.
func (i *Issue) CanDelete(userID primitive.ObjectID, role string) bool {
	if role == RoleAuthority {
		return true
	}
	return i.ReportedBy == userID && i.Status == Pending
}

// HasUpvoted reports whether the given user is in the upvote ledger.
func (i *Issue) HasUpvoted(userID primitive.ObjectID) bool {
	for _, id := range i.UpvotedBy {
		if id == userID {
			return true
		}
	}
	return false
}
