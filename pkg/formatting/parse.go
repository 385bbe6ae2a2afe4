package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content is neither JSON nor a fenced JSON block.
var ErrParseFailed = errors.New("failed to parse response")

// snippetLimit caps how much of the rejected content is echoed into errors.
const snippetLimit = 256

var fencedJSON = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse decodes content as JSON into T. Upstream services occasionally
// wrap their body in a markdown code fence, so a fenced block is tried
// when the direct decode fails.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if m := fencedJSON.FindStringSubmatch(content); len(m) >= 2 {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %q", ErrParseFailed, Snippet(content, snippetLimit))
}

// Snippet shortens s to at most n bytes, marking the cut with an ellipsis.
func Snippet(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
