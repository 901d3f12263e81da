package tour

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/tourguide/pkg/llm"
	"github.com/entrhq/tourguide/pkg/types"
)

const (
	scriptMaxTokens   = 1000
	scriptTemperature = 0.5
)

// ScriptStep is one entry of a generated tour script.
type ScriptStep struct {
	Action    types.ActionPayload `json:"action"`
	Narration string              `json:"narration"`

	// DurationSeconds is the approximate time the step should take
	// when played back.
	DurationSeconds int `json:"duration"`
}

const scriptSystemPrompt = `You are an AI demo script generator. Create a comprehensive tour script for the given website URL.

Return a JSON array of tour steps, each with:
- action: the browser action to take (type, target, description)
- narration: what to say during this step
- duration: approximate time for this step in seconds

Focus on:
1. Homepage overview
2. Key features and navigation
3. Important sections or pages
4. Call-to-action elements

Make it engaging and informative for potential users.`

// GenerateScript asks the provider for a scripted walkthrough of
// siteURL. With no provider, a failed request, or output that does not
// parse as a step array, it returns a deterministic two-step script.
func GenerateScript(ctx context.Context, provider llm.Provider, siteURL string) []ScriptStep {
	if provider == nil {
		return fallbackScript(siteURL)
	}

	messages := []*types.Message{
		types.NewSystemMessage(scriptSystemPrompt),
		types.NewUserMessage("Generate a demo tour script for: " + siteURL),
	}

	response, err := provider.Complete(ctx, messages, llm.CompletionOptions{
		MaxTokens:   scriptMaxTokens,
		Temperature: scriptTemperature,
	})
	if err != nil {
		return fallbackScript(siteURL)
	}

	steps, ok := parseScript(response.Content)
	if !ok || len(steps) == 0 {
		return fallbackScript(siteURL)
	}
	return steps
}

// parseScript extracts the first JSON array from model output.
func parseScript(text string) ([]ScriptStep, bool) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil, false
	}

	var steps []ScriptStep
	if err := json.Unmarshal([]byte(text[start:end+1]), &steps); err != nil {
		return nil, false
	}
	return steps, true
}

// fallbackScript is the deterministic script: load the homepage, then
// scroll through it.
func fallbackScript(siteURL string) []ScriptStep {
	return []ScriptStep{
		{
			Action: types.ActionPayload{
				Type:        "navigate",
				Target:      siteURL,
				Description: "Load homepage",
			},
			Narration:       fmt.Sprintf("Welcome to the demo of %s. Let's explore the key features of this website.", siteURL),
			DurationSeconds: 3,
		},
		{
			Action: types.ActionPayload{
				Type:        "scroll",
				Description: "Scroll through homepage",
			},
			Narration:       "Here you can see the main content and layout of the homepage.",
			DurationSeconds: 5,
		},
	}
}
