package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOfficialComment(t *testing.T) {
	if !OfficialComment(RoleAuthority) {
		t.Error("authority comments should be official")
	}
	if OfficialComment(RoleCitizen) {
		t.Error("citizen comments should not be official")
	}
	if OfficialComment("") {
		t.Error("missing role should not be official")
	}
}

func TestCanDeleteComment(t *testing.T) {
	author := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	comment := Comment{AuthorID: author}

	if !comment.CanDeleteComment(author, RoleCitizen) {
		t.Error("author should be able to delete own comment")
	}
	if comment.CanDeleteComment(stranger, RoleCitizen) {
		t.Error("stranger should not be able to delete comment")
	}
	if !comment.CanDeleteComment(stranger, RoleAuthority) {
		t.Error("authority should be able to delete any comment")
	}
}
