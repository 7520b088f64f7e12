package gateway

import "strings"

// NormalizePrompt trims caller-supplied prompt text and collapses internal
// runs of whitespace. Returns "" for prompts with no visible content.
func NormalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}

// EnrichPrompt appends the configured style suffix to a normalized prompt.
func EnrichPrompt(prompt, styleSuffix string) string {
	if prompt == "" || styleSuffix == "" {
		return prompt
	}
	return prompt + ", " + styleSuffix
}
