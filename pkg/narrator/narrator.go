// Package narrator turns page snapshots into spoken-style narration and
// free-text commands into structured browser actions, using an LLM
// provider when one is configured and deterministic templates when it
// is not.
//
// Neither Narrate nor Interpret ever returns an error: provider
// absence, request failure, and malformed model output all degrade to
// the template fallbacks. That degraded mode is a designed state, not
// an error path.
package narrator

import (
	"context"
	"strings"

	"github.com/entrhq/tourguide/pkg/llm"
	"github.com/entrhq/tourguide/pkg/logging"
	"github.com/entrhq/tourguide/pkg/types"
)

const (
	narrationMaxTokens   = 300
	narrationTemperature = 0.7

	interpretMaxTokens   = 500
	interpretTemperature = 0.3
)

// CommandContext is the accumulated tour state given to Interpret so
// the model can resolve references like "go back to the pricing page".
type CommandContext struct {
	// CurrentPage is the snapshot of the page the command applies to,
	// if one has been extracted.
	CurrentPage *types.PageContent `json:"currentPage,omitempty"`

	// VisitedTitles are the titles of pages covered by the tour so
	// far, in visit order.
	VisitedTitles []string `json:"visitedTitles,omitempty"`

	// PageURLs is the full tour page list.
	PageURLs []string `json:"pageUrls,omitempty"`

	// TourComplete indicates the automated tour has finished and the
	// session is in interactive mode.
	TourComplete bool `json:"tourComplete"`
}

// Narrator is the adapter between the tour engine and the completion
// provider. A nil provider is valid and selects the deterministic
// fallback for every call.
type Narrator struct {
	provider llm.Provider
	logger   *logging.Logger
}

// New creates a Narrator. provider may be nil; logger may be nil.
func New(provider llm.Provider, logger *logging.Logger) *Narrator {
	return &Narrator{provider: provider, logger: logger}
}

// Narrate produces narration for a page, given the pages already
// visited on this tour. The visited titles are passed to the model as a
// content hint so it avoids repeating covered material.
func (n *Narrator) Narrate(ctx context.Context, page types.PageContent, visited []types.PageContent) string {
	if n.provider == nil {
		return fallbackNarration(page, visited)
	}

	messages := []*types.Message{
		types.NewSystemMessage(narrationSystemPrompt(visited)),
		types.NewUserMessage(narrationUserPrompt(page)),
	}

	response, err := n.provider.Complete(ctx, messages, llm.CompletionOptions{
		MaxTokens:   narrationMaxTokens,
		Temperature: narrationTemperature,
	})
	if err != nil {
		n.warnf("narration request failed, using fallback: %v", err)
		return fallbackErrorNarration(page)
	}

	narration := strings.TrimSpace(response.Content)
	if narration == "" {
		return fallbackEmptyNarration(page)
	}
	return narration
}

// Interpret translates a free-text command into a browser action plus
// confirmation narration. The returned action is always non-nil; when
// the provider is absent or its output cannot be parsed, it is a
// highlight action echoing the command.
func (n *Narrator) Interpret(ctx context.Context, command string, cmdCtx CommandContext) (types.BrowserAction, string) {
	if n.provider == nil {
		return fallbackInterpretation(command)
	}

	messages := []*types.Message{
		types.NewSystemMessage(interpretSystemPrompt),
		types.NewUserMessage(interpretUserPrompt(command, cmdCtx)),
	}

	response, err := n.provider.Complete(ctx, messages, llm.CompletionOptions{
		MaxTokens:   interpretMaxTokens,
		Temperature: interpretTemperature,
	})
	if err != nil {
		n.warnf("interpret request failed, using fallback: %v", err)
		return fallbackInterpretation(command)
	}

	action, narration, ok := parseModelResponse(response.Content)
	if !ok {
		n.warnf("model output did not parse as an action, using fallback")
		// Keep the model's prose as narration; the action degrades to
		// a no-op highlight.
		narration = strings.TrimSpace(response.Content)
		if narration == "" {
			return fallbackInterpretation(command)
		}
		return types.HighlightAction{Description: "Unable to parse command clearly"}, narration
	}

	if narration == "" {
		narration = "Command processed: " + command
	}
	return action, narration
}

func (n *Narrator) warnf(format string, v ...interface{}) {
	if n.logger != nil {
		n.logger.Warnf(format, v...)
	}
}
