package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeProvider struct {
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestImproveDescriptionSuccess(t *testing.T) {
	fake := &fakeProvider{response: "the pothole has widened and now blocks one lane."}
	assist := NewAIAssist(fake)

	result := assist.ImproveDescription(context.Background(), "Pothole on Elm St", "Roads", "big pothole")

	if !result.AIAvailable {
		t.Fatal("expected aiAvailable=true")
	}
	if !strings.HasPrefix(result.Description, "The pothole") {
		t.Errorf("first letter not capitalized: %q", result.Description)
	}
	if !strings.HasSuffix(result.Description, improveBoilerplate) {
		t.Errorf("boilerplate sentence missing: %q", result.Description)
	}
}

func TestImproveDescriptionFailureReturnsOriginal(t *testing.T) {
	assist := NewAIAssist(&fakeProvider{err: errors.New("quota exceeded")})

	original := "big pothole near the school"
	result := assist.ImproveDescription(context.Background(), "Pothole", "Roads", original)

	if result.AIAvailable {
		t.Error("expected aiAvailable=false")
	}
	if result.Description != original {
		t.Errorf("original description changed: %q", result.Description)
	}
}

func TestCheckDuplicatesEmptyListShortCircuits(t *testing.T) {
	fake := &fakeProvider{response: `{"isDuplicate": true}`}
	assist := NewAIAssist(fake)

	result := assist.CheckDuplicates(context.Background(), "t", "d", "l", nil)

	if fake.calls != 0 {
		t.Errorf("provider called %d times, want 0", fake.calls)
	}
	if result.IsDuplicate || result.Confidence != 0 || !result.AIAvailable {
		t.Errorf("unexpected short-circuit result: %+v", result)
	}
}

func TestCheckDuplicatesParsesFencedJSON(t *testing.T) {
	fake := &fakeProvider{response: "```json\n{\"isDuplicate\": true, \"matchedIssueId\": \"abc123\", \"confidence\": 150, \"reason\": \"same street\"}\n```"}
	assist := NewAIAssist(fake)

	existing := []DuplicateCandidate{{ID: "abc123", Title: "Pothole on Elm St"}}
	result := assist.CheckDuplicates(context.Background(), "Pothole", "hole", "Elm St", existing)

	if !result.IsDuplicate {
		t.Error("expected isDuplicate=true")
	}
	if result.MatchedIssueID != "abc123" {
		t.Errorf("matchedIssueId = %q", result.MatchedIssueID)
	}
	if result.Confidence != 100 {
		t.Errorf("confidence not clamped to 100: %d", result.Confidence)
	}
	if !result.AIAvailable {
		t.Error("expected aiAvailable=true")
	}
}

func TestCheckDuplicatesMalformedResponseDefaults(t *testing.T) {
	assist := NewAIAssist(&fakeProvider{response: "I think it might be a duplicate?"})

	existing := []DuplicateCandidate{{ID: "abc123"}}
	result := assist.CheckDuplicates(context.Background(), "t", "d", "l", existing)

	if result.IsDuplicate || result.Confidence != 0 {
		t.Errorf("expected safe default, got %+v", result)
	}
	if result.AIAvailable {
		t.Error("expected aiAvailable=false on parse failure")
	}
}

func TestAnalyzePriorityFailureReturnsNeutralDefault(t *testing.T) {
	assist := NewAIAssist(&fakeProvider{err: context.DeadlineExceeded})

	result := assist.AnalyzePriority(context.Background(), "t", "d", "Roads", 3)

	want := PriorityResult{
		UrgencyScore:    5,
		Sentiment:       "neutral",
		Priority:        "medium",
		SuggestedAction: "Review and assign to appropriate team",
		EstimatedImpact: "Unknown",
		AIAvailable:     false,
	}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("AnalyzePriority = %+v, want %+v", result, want)
	}
}

func TestAnalyzePriorityClampsUrgency(t *testing.T) {
	fake := &fakeProvider{response: `{"urgencyScore": 12, "sentiment": "angry", "priority": "high", "suggestedAction": "Dispatch crew", "estimatedImpact": "High"}`}
	assist := NewAIAssist(fake)

	result := assist.AnalyzePriority(context.Background(), "t", "d", "Roads", 40)

	if result.UrgencyScore != 10 {
		t.Errorf("urgencyScore not clamped: %d", result.UrgencyScore)
	}
	if !result.AIAvailable {
		t.Error("expected aiAvailable=true")
	}
}

func TestSuggestTitleTrimsToThree(t *testing.T) {
	fake := &fakeProvider{response: `["Fix the pothole on Elm Street", "Repair dangerous road damage near school", "Patch Elm Street crossing urgently", "Extra title"]`}
	assist := NewAIAssist(fake)

	result := assist.SuggestTitle(context.Background(), "pothole elm", "Roads")

	if len(result.Suggestions) != 3 {
		t.Errorf("got %d suggestions, want 3", len(result.Suggestions))
	}
	if !result.AIAvailable {
		t.Error("expected aiAvailable=true")
	}
}

func TestSuggestTitleFailureReturnsEmpty(t *testing.T) {
	assist := NewAIAssist(&fakeProvider{err: errors.New("network down")})

	result := assist.SuggestTitle(context.Background(), "pothole", "Roads")

	if len(result.Suggestions) != 0 {
		t.Errorf("got %d suggestions, want 0", len(result.Suggestions))
	}
	if result.AIAvailable {
		t.Error("expected aiAvailable=false")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
