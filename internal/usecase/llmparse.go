package usecase

import (
	"strings"
)

// Helpers for recovering structure from free-form model output. Model
// responses are untrusted text: they may arrive wrapped in markdown fences,
// prefixed with conversational filler, or broken across lines.

// stripCodeFence removes markdown code-block wrappers from a response.
func stripCodeFence(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// extractObject isolates the first balanced {...} object from mixed content.
func extractObject(response string) (string, bool) {
	start := strings.Index(response, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1], true
			}
		}
	}
	return "", false
}

// extractArray isolates a best-effort [...] substring using the first
// opening and last closing bracket.
func extractArray(response string) (string, bool) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return response[start : end+1], true
}

// normalizeJSONWhitespace flattens newlines and tabs that commonly break
// strict parsing of model-emitted JSON.
func normalizeJSONWhitespace(s string) string {
	replacer := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")
	return strings.TrimSpace(replacer.Replace(s))
}
