package narrator

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	// tokenEncoder is the shared tiktoken encoder
	tokenEncoder *tiktoken.Tiktoken
	encoderOnce  sync.Once
	encoderErr   error
)

// initTokenEncoder initializes the tiktoken encoder (lazy initialization)
func initTokenEncoder() error {
	encoderOnce.Do(func() {
		// cl100k_base covers the GPT-4/3.5 model families
		tokenEncoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
	})
	return encoderErr
}

// countTokens counts the tokens in text, falling back to a bytes/4
// estimate if the encoder cannot be initialized.
func countTokens(text string) int {
	if err := initTokenEncoder(); err != nil {
		return estimateTokens(text)
	}
	return len(tokenEncoder.Encode(text, nil, nil))
}

// truncateTokens bounds text to at most maxTokens tokens. With no
// working encoder it falls back to a character-based bound.
func truncateTokens(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}

	if err := initTokenEncoder(); err != nil {
		limit := maxTokens * 4
		if len(text) <= limit {
			return text
		}
		return text[:limit]
	}

	tokens := tokenEncoder.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return tokenEncoder.Decode(tokens[:maxTokens])
}

// estimateTokens approximates a token count at roughly four bytes per
// token, which is close enough for budget enforcement.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}
