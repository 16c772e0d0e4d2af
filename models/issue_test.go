package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from IssueStatus
		to   IssueStatus
		want bool
	}{
		{"pending to in progress", Pending, InProgress, true},
		{"in progress to resolved", InProgress, Resolved, true},
		{"pending to rejected", Pending, Rejected, true},
		{"in progress to rejected", InProgress, Rejected, true},
		{"pending straight to resolved", Pending, Resolved, false},
		{"resolved back to pending", Resolved, Pending, false},
		{"resolved to in progress", Resolved, InProgress, false},
		{"rejected to in progress", Rejected, InProgress, false},
		{"in progress back to pending", InProgress, Pending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCanDelete(t *testing.T) {
	reporter := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	tests := []struct {
		name   string
		status IssueStatus
		caller primitive.ObjectID
		role   string
		want   bool
	}{
		{"reporter while pending", Pending, reporter, RoleCitizen, true},
		{"reporter after in progress", InProgress, reporter, RoleCitizen, false},
		{"reporter after resolved", Resolved, reporter, RoleCitizen, false},
		{"stranger while pending", Pending, stranger, RoleCitizen, false},
		{"authority while pending", Pending, stranger, RoleAuthority, true},
		{"authority after resolved", Resolved, stranger, RoleAuthority, true},
		{"authority after rejected", Rejected, stranger, RoleAuthority, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := Issue{ReportedBy: reporter, Status: tt.status}
			if got := issue.CanDelete(tt.caller, tt.role); got != tt.want {
				t.Errorf("CanDelete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, cat := range []string{"Roads", "Water Supply", "Electricity", "Garbage",
		"Streetlights", "Drainage", "Parks", "Public Transport", "Noise Pollution", "Other"} {
		if !ValidCategory(cat) {
			t.Errorf("ValidCategory(%q) = false, want true", cat)
		}
	}
	for _, cat := range []string{"", "roads", "Potholes", "All"} {
		if ValidCategory(cat) {
			t.Errorf("ValidCategory(%q) = true, want false", cat)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"Pending", "In Progress", "Resolved", "Rejected"} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "pending", "Closed", "All"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}

func TestHasUpvoted(t *testing.T) {
	u1 := primitive.NewObjectID()
	u2 := primitive.NewObjectID()

	issue := Issue{UpvotedBy: []primitive.ObjectID{u1}, UpvoteCount: 1}

	if !issue.HasUpvoted(u1) {
		t.Error("expected u1 to be in the ledger")
	}
	if issue.HasUpvoted(u2) {
		t.Error("did not expect u2 in the ledger")
	}
	if len(issue.UpvotedBy) != issue.UpvoteCount {
		t.Errorf("ledger invariant broken: count %d, members %d", issue.UpvoteCount, len(issue.UpvotedBy))
	}
}
