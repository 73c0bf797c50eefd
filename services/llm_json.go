package services

import "strings"

// StripCodeFences pulls the payload out of a markdown code fence when a
// model wraps its JSON in one. Text without fences passes through
// untouched.
func StripCodeFences(s string) string {
	if strings.Contains(s, "```json") {
		after := strings.SplitN(s, "```json", 2)[1]
		return strings.TrimSpace(strings.SplitN(after, "```", 2)[0])
	}
	if strings.Contains(s, "```") {
		parts := strings.SplitN(s, "```", 3)
		if len(parts) >= 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(s)
}

// flattenLine collapses a model response to one line before fence
// stripping, mirroring how grading responses are sanitized.
func flattenLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "")
	return strings.ReplaceAll(s, "\n", "")
}
