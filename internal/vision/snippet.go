package vision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseCodeSnippet extracts the first triple-backtick fenced block from a
// model response, strips any language tag, and unmarshals it as JSON into
// out. Responses without a fence are parsed whole, since some models ignore
// the fencing instruction.
func ParseCodeSnippet(response string, out any) error {
	snippet := extractFenced(response)
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return fmt.Errorf("empty model response")
	}
	if err := json.Unmarshal([]byte(snippet), out); err != nil {
		return fmt.Errorf("parse model response: %w", err)
	}
	return nil
}

// extractFenced returns the content of the first ``` fence, or the whole
// string when no fence is present.
func extractFenced(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	rest := s[start+3:]
	// Drop a language tag such as ```json on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine != "" && !strings.HasPrefix(firstLine, "{") && !strings.HasPrefix(firstLine, "[") {
			rest = rest[nl+1:]
		}
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		return rest[:end]
	}
	return rest
}
