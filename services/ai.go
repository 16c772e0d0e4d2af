package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Provider is the text-generation backend behind the AI assist operations.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint.
// Credentials and model are read from the environment on each call so they
// follow .env loading at startup.
type OpenAIProvider struct{}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY environment variable is not set")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("provider returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

const providerTimeout = 20 * time.Second

// AIAssist translates UI intents into prompts and parses structured results
// back. Every operation is best-effort: on any provider or parse failure the
// neutral default for that operation is returned with AIAvailable=false, and
// no error ever reaches the caller.
type AIAssist struct {
	provider Provider
}

func NewAIAssist(p Provider) *AIAssist {
	return &AIAssist{provider: p}
}

const improveBoilerplate = " This issue requires prompt attention from the concerned authorities."

type ImproveResult struct {
	Description string `json:"description"`
	AIAvailable bool   `json:"aiAvailable"`
}

// ImproveDescription asks the provider for a professional rewrite of a
// citizen-written description. The original text comes back unchanged when
// the provider is unavailable; this never blocks issue creation.
func (a *AIAssist) ImproveDescription(ctx context.Context, title, category, description string) ImproveResult {
	prompt := fmt.Sprintf(
		"Rewrite the following civic issue description in 3-4 clear, professional sentences. "+
			"Emphasize the impact on residents. Return only the rewritten text.\n\n"+
			"Title: %s\nCategory: %s\nDescription: %s",
		title, category, description)

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return ImproveResult{Description: description, AIAvailable: false}
	}

	improved := strings.TrimSpace(text) + improveBoilerplate
	return ImproveResult{Description: capitalizeFirst(improved), AIAvailable: true}
}

// DuplicateCandidate is an existing issue offered to the provider for
// comparison. Callers should pre-filter to non-resolved issues and cap the
// list to bound prompt size.
type DuplicateCandidate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type DuplicateResult struct {
	IsDuplicate    bool   `json:"isDuplicate"`
	MatchedIssueID string `json:"matchedIssueId,omitempty"`
	Confidence     int    `json:"confidence"`
	Reason         string `json:"reason,omitempty"`
	AIAvailable    bool   `json:"aiAvailable"`
}

// CheckDuplicates asks the provider whether a new report matches one of the
// existing issues. An empty candidate list short-circuits locally without a
// provider call.
func (a *AIAssist) CheckDuplicates(ctx context.Context, title, description, location string, existing []DuplicateCandidate) DuplicateResult {
	if len(existing) == 0 {
		return DuplicateResult{IsDuplicate: false, Confidence: 0, AIAvailable: true}
	}

	candidates, err := json.Marshal(existing)
	if err != nil {
		return DuplicateResult{IsDuplicate: false, Confidence: 0, AIAvailable: false}
	}

	prompt := fmt.Sprintf(
		"A citizen is reporting a new civic issue. Compare it against the existing issues "+
			"and decide whether it duplicates one of them.\n\n"+
			"New issue:\nTitle: %s\nDescription: %s\nLocation: %s\n\n"+
			"Existing issues (JSON): %s\n\n"+
			"Respond with strict JSON only, no markdown: "+
			`{"isDuplicate": boolean, "matchedIssueId": string, "confidence": number 0-100, "reason": string}`,
		title, description, location, string(candidates))

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return DuplicateResult{IsDuplicate: false, Confidence: 0, AIAvailable: false}
	}

	var parsed struct {
		IsDuplicate    bool    `json:"isDuplicate"`
		MatchedIssueID string  `json:"matchedIssueId"`
		Confidence     float64 `json:"confidence"`
		Reason         string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		return DuplicateResult{IsDuplicate: false, Confidence: 0, AIAvailable: false}
	}

	return DuplicateResult{
		IsDuplicate:    parsed.IsDuplicate,
		MatchedIssueID: parsed.MatchedIssueID,
		Confidence:     clampInt(int(parsed.Confidence), 0, 100),
		Reason:         parsed.Reason,
		AIAvailable:    true,
	}
}

type PriorityResult struct {
	UrgencyScore    int    `json:"urgencyScore"`
	Sentiment       string `json:"sentiment"`
	Priority        string `json:"priority"`
	SuggestedAction string `json:"suggestedAction"`
	EstimatedImpact string `json:"estimatedImpact"`
	AIAvailable     bool   `json:"aiAvailable"`
}

func neutralPriority() PriorityResult {
	return PriorityResult{
		UrgencyScore:    5,
		Sentiment:       "neutral",
		Priority:        "medium",
		SuggestedAction: "Review and assign to appropriate team",
		EstimatedImpact: "Unknown",
	}
}

// AnalyzePriority scores an issue's urgency. Any failure yields the fixed
// neutral default.
func (a *AIAssist) AnalyzePriority(ctx context.Context, title, description, category string, upvoteCount int) PriorityResult {
	prompt := fmt.Sprintf(
		"Assess the urgency of this civic issue.\n\n"+
			"Title: %s\nDescription: %s\nCategory: %s\nUpvotes: %d\n\n"+
			"Respond with strict JSON only, no markdown: "+
			`{"urgencyScore": number 1-10, "sentiment": string, "priority": "low"|"medium"|"high", "suggestedAction": string, "estimatedImpact": string}`,
		title, description, category, upvoteCount)

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return neutralPriority()
	}

	var parsed struct {
		UrgencyScore    float64 `json:"urgencyScore"`
		Sentiment       string  `json:"sentiment"`
		Priority        string  `json:"priority"`
		SuggestedAction string  `json:"suggestedAction"`
		EstimatedImpact string  `json:"estimatedImpact"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err != nil {
		return neutralPriority()
	}

	return PriorityResult{
		UrgencyScore:    clampInt(int(parsed.UrgencyScore), 1, 10),
		Sentiment:       parsed.Sentiment,
		Priority:        parsed.Priority,
		SuggestedAction: parsed.SuggestedAction,
		EstimatedImpact: parsed.EstimatedImpact,
		AIAvailable:     true,
	}
}

type TitleResult struct {
	Suggestions []string `json:"suggestions"`
	AIAvailable bool     `json:"aiAvailable"`
}

// SuggestTitle asks for three candidate titles. Failure yields an empty list.
func (a *AIAssist) SuggestTitle(ctx context.Context, partial, category string) TitleResult {
	prompt := fmt.Sprintf(
		"Suggest exactly 3 titles for a civic issue report in the %q category, "+
			"based on this draft: %q. Each title must be 5-10 words and action-oriented. "+
			"Respond with a strict JSON array of 3 strings only, no markdown.",
		category, partial)

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return TitleResult{Suggestions: []string{}, AIAvailable: false}
	}

	var titles []string
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &titles); err != nil {
		return TitleResult{Suggestions: []string{}, AIAvailable: false}
	}
	if len(titles) > 3 {
		titles = titles[:3]
	}

	return TitleResult{Suggestions: titles, AIAvailable: true}
}

func (a *AIAssist) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()
	return a.provider.Generate(ctx, prompt)
}

// stripCodeFence removes a markdown code fence wrapper (``` or ```json) that
// models often emit around JSON despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func capitalizeFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
