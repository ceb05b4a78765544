package llm

import (
	"context"
	"strings"
)

// Client is the completion interface the services depend on, so tests can
// substitute a fake for the hosted API.
type Client interface {
	// Complete sends a system+user prompt and returns the raw model text.
	Complete(ctx context.Context, system, user string) (string, error)
	// CompleteJSON is Complete with the model constrained to emit a JSON object.
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// ExtractJSONObject slices the first top-level JSON object out of model
// output, tolerating markdown fences and chatter around it. Returns the
// input unchanged when no braces are found so the caller's parse error
// carries the original content.
func ExtractJSONObject(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return content
	}

	return content[start : end+1]
}
