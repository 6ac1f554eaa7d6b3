package embed

import (
	"strings"
	"testing"
)

func TestTruncateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
	}{
		{"empty", "", 10},
		{"short stays intact", "hello world", 100},
		{"long gets cut", strings.Repeat("another word ", 500), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateTokens(tt.text, tt.max)

			if len(getTokenizer().Encode(got, nil, nil)) > tt.max {
				t.Errorf("truncateTokens left more than %d tokens", tt.max)
			}
			if len(getTokenizer().Encode(tt.text, nil, nil)) <= tt.max && got != tt.text {
				t.Errorf("short input was modified: %q", got)
			}
		})
	}
}
