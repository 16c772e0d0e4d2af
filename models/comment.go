package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a remark left on an issue. IsOfficial is derived from the
// author's role at creation time and never re-evaluated afterwards.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID    primitive.ObjectID `bson:"issueId" json:"issueId"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	Text       string             `bson:"text" json:"text"`
	IsOfficial bool               `bson:"isOfficial" json:"isOfficial"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// OfficialComment reports whether a comment written by a user with the given
// role counts as an official authority response.
func OfficialComment(role string) bool {
	return role == RoleAuthority
}

// CanDeleteComment reports whether the caller may delete the comment: its
// author, or any authority.
func (cm *Comment) CanDeleteComment(userID primitive.ObjectID, role string) bool {
	return cm.AuthorID == userID || role == RoleAuthority
}
