package narrator

import (
	"encoding/json"
	"strings"

	"github.com/entrhq/tourguide/pkg/types"
)

// modelResponse is the JSON shape the interpret prompt asks for.
type modelResponse struct {
	Action    types.ActionPayload `json:"action"`
	Narration string              `json:"narration"`
}

// parseModelResponse extracts the structured action from free-form
// model output. Models frequently wrap JSON in prose or markdown
// fences, so the first balanced JSON object in the text is used.
// Returns ok=false when no parseable action is present.
func parseModelResponse(text string) (types.BrowserAction, string, bool) {
	candidate, found := firstJSONObject(text)
	if !found {
		return nil, "", false
	}

	var response modelResponse
	if err := json.Unmarshal([]byte(candidate), &response); err != nil {
		return nil, "", false
	}

	action, err := types.ParseAction(response.Action)
	if err != nil {
		return nil, "", false
	}

	return action, strings.TrimSpace(response.Narration), true
}

// firstJSONObject returns the first balanced top-level {...} block in
// text. Brace counting ignores braces inside JSON strings.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
