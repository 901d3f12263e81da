// Package llm provides abstractions for LLM provider integration.
//
// Providers handle API communication with completion services and
// return simple StreamChunk instances. The narrator layer is
// responsible for prompt construction, output parsing, and fallback
// behavior when a provider is absent or misbehaves; providers stay
// focused on transport concerns.
package llm

import (
	"context"

	"github.com/entrhq/tourguide/pkg/types"
)

// CompletionOptions bounds a single completion request. Zero values
// mean "use the provider default".
type CompletionOptions struct {
	// MaxTokens caps the length of the generated response.
	MaxTokens int

	// Temperature controls sampling randomness. Narration uses a
	// higher value than command interpretation.
	Temperature float64
}

// StreamChunk is one increment of a streamed completion response.
type StreamChunk struct {
	// Role is set on the first chunk of a response (e.g. "assistant").
	Role string

	// Content is the text delta carried by this chunk.
	Content string

	// Finished is true on the final chunk of a response.
	Finished bool

	// Error is set when the stream failed mid-flight.
	Error error
}

// IsError reports whether this chunk carries a stream error.
func (c *StreamChunk) IsError() bool {
	return c.Error != nil
}

// Provider defines the interface for completion service integrations.
type Provider interface {
	// StreamCompletion sends messages to the provider and streams back
	// response chunks. The returned channel is closed when streaming
	// completes or an error occurs; callers should read until closure.
	//
	// Returns an error only if streaming cannot be initiated (invalid
	// configuration, network unavailable). Stream-time errors are sent
	// as StreamChunk instances with Error set.
	StreamCompletion(ctx context.Context, messages []*types.Message, opts CompletionOptions) (<-chan *StreamChunk, error)

	// Complete sends messages to the provider and returns the full
	// response. It is a convenience wrapper around StreamCompletion
	// that accumulates all chunks into a single message.
	Complete(ctx context.Context, messages []*types.Message, opts CompletionOptions) (*types.Message, error)

	// GetModelInfo returns information about the model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL used for API requests.
	GetBaseURL() string
}
