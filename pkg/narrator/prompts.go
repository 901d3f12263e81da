package narrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/tourguide/pkg/types"
)

// promptContentBudget bounds the page excerpt and context blocks that
// get interpolated into user prompts, in tokens.
const promptContentBudget = 1200

// narrationSystemPrompt frames the model as a demo narrator. The
// visited-page titles are included so the model avoids re-covering
// material; this is a content hint, not an enforced invariant.
func narrationSystemPrompt(visited []types.PageContent) string {
	contextSummary := "This is the first page of the demo."
	if len(visited) > 0 {
		titles := make([]string, 0, len(visited))
		for _, page := range visited {
			titles = append(titles, page.Title)
		}
		contextSummary = "Previously visited: " + strings.Join(titles, ", ")
	}

	return `You are an AI demo narrator providing engaging, informative commentary about website pages during an automated tour.

Guidelines:
- Speak in a conversational, professional tone
- Highlight key features, navigation, and content areas
- Keep narration concise but informative (30-60 seconds when spoken)
- Mention important buttons, forms, and interactive elements
- Don't repeat information from previously visited pages
- Focus on what makes this page unique and valuable

Context: ` + contextSummary
}

// narrationUserPrompt summarizes the page snapshot for the model.
func narrationUserPrompt(page types.PageContent) string {
	buttonTexts := make([]string, 0, len(page.Buttons))
	for _, b := range page.Buttons {
		buttonTexts = append(buttonTexts, b.Text)
	}

	linkTexts := make([]string, 0, 5)
	for _, l := range page.Links {
		if len(linkTexts) == 5 {
			break
		}
		linkTexts = append(linkTexts, l.Text)
	}

	hasForms := "No"
	if len(page.Forms) > 0 {
		hasForms = "Yes"
	}

	return fmt.Sprintf(`Create engaging narration for this page:

Title: %s
URL: %s

Key headings: %s
Interactive elements: %s
Main content preview: %s
Forms available: %s
Navigation links: %s

Generate natural, engaging narration that explains what users can see and do on this page.`,
		page.Title,
		page.URL,
		strings.Join(page.Headings, ", "),
		strings.Join(buttonTexts, ", "),
		truncateTokens(page.MainContent, promptContentBudget),
		hasForms,
		strings.Join(linkTexts, ", "),
	)
}

// interpretSystemPrompt fixes the output contract for command
// translation: a JSON object with an action and a narration.
const interpretSystemPrompt = `You are an AI demo assistant helping users interact with a website through voice commands.
Interpret the user's command and convert it into a specific browser action.

Return a JSON response with:
- action: object with type, target (CSS selector if needed), value (for typing), and description
- narration: what to say to confirm or explain the action

Available actions:
- click: Click on an element (needs CSS selector)
- scroll: Scroll the page (direction up/down and pixel amount)
- navigate: Go to a specific page/URL
- type: Type text into a field (needs selector and text)
- highlight: Highlight an element for explanation

If you can't determine the exact CSS selector, provide a general description and suggest the user be more specific.`

// interpretUserPrompt pairs the raw command with the serialized tour
// context.
func interpretUserPrompt(command string, cmdCtx CommandContext) string {
	contextJSON, err := json.Marshal(cmdCtx)
	if err != nil {
		contextJSON = []byte("{}")
	}

	return fmt.Sprintf(`User command: %q
Current page context: %s

Convert this command into a browser action.`,
		command,
		truncateTokens(string(contextJSON), promptContentBudget),
	)
}
