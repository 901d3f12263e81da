package narrator

import (
	"fmt"
	"strings"

	"github.com/entrhq/tourguide/pkg/types"
)

// fallbackNarration is the deterministic no-provider narration: a
// templated sentence built from the page title, the visited-page
// count, the leading headings, and the button count.
func fallbackNarration(page types.PageContent, visited []types.PageContent) string {
	contextText := " This is our first page."
	if n := len(visited); n > 0 {
		plural := ""
		if n > 1 {
			plural = "s"
		}
		contextText = fmt.Sprintf(" We've already visited %d page%s.", n, plural)
	}

	featuresText := ""
	if len(page.Headings) > 0 {
		lead := page.Headings
		if len(lead) > 3 {
			lead = lead[:3]
		}
		featuresText = fmt.Sprintf(" The main sections include: %s.", strings.Join(lead, ", "))
	}

	interactiveText := ""
	if len(page.Buttons) > 0 {
		interactiveText = fmt.Sprintf(" There are %d interactive elements you can use.", len(page.Buttons))
	}

	return fmt.Sprintf("Welcome to %s.%s%s%s Feel free to explore the features on this page.",
		page.Title, contextText, featuresText, interactiveText)
}

// fallbackErrorNarration is used when a provider call fails outright.
func fallbackErrorNarration(page types.PageContent) string {
	return fmt.Sprintf("Welcome to %s. This page contains various features and content for users to explore.", page.Title)
}

// fallbackEmptyNarration is used when the provider returns an empty
// response.
func fallbackEmptyNarration(page types.PageContent) string {
	return fmt.Sprintf("Welcome to %s. This page features %s and provides %d interactive elements for user engagement.",
		page.Title, strings.Join(page.Headings, ", "), len(page.Buttons))
}

// fallbackInterpretation is the deterministic command translation: a
// highlight action echoing the raw command, with narration restating
// the command literally.
func fallbackInterpretation(command string) (types.BrowserAction, string) {
	action := types.HighlightAction{
		Description: "Execute command: " + command,
	}
	narration := fmt.Sprintf("I understand you want to: %s. Let me help you with that.", command)
	return action, narration
}
