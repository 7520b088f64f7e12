package gateway

import "testing"

func TestNormalizePrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"plain", "a red fox", "a red fox"},
		{"surrounding space", "  a red fox  ", "a red fox"},
		{"internal runs collapsed", "a   red \t fox", "a red fox"},
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePrompt(tt.prompt); got != tt.want {
				t.Errorf("NormalizePrompt(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestEnrichPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		suffix string
		want   string
	}{
		{"with suffix", "a red fox", "watercolor", "a red fox, watercolor"},
		{"no suffix", "a red fox", "", "a red fox"},
		{"empty prompt stays empty", "", "watercolor", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnrichPrompt(tt.prompt, tt.suffix); got != tt.want {
				t.Errorf("EnrichPrompt(%q, %q) = %q, want %q", tt.prompt, tt.suffix, got, tt.want)
			}
		})
	}
}
