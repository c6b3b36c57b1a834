// ABOUTME: Tests for ANSI-aware truncation
// ABOUTME: Covers ellipsis truncation of a single rendered row

package line

import (
	"testing"
)

func TestTruncateToWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxWidth int
		wantLen  int // check visible width of output
		fits     bool
	}{
		{name: "fits", input: "hi", maxWidth: 5, fits: true},
		{name: "exact", input: "hello", maxWidth: 5, fits: true},
		{name: "truncated", input: "hello world", maxWidth: 5, wantLen: 5, fits: false},
		{name: "one char", input: "hello", maxWidth: 1, fits: false},
		{name: "zero", input: "hello", maxWidth: 0, fits: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateToWidth(tt.input, tt.maxWidth)
			gotWidth := VisibleWidth(got)
			if tt.fits {
				if got != tt.input {
					t.Errorf("expected no truncation, got %q", got)
				}
			} else if tt.maxWidth > 0 && gotWidth > tt.maxWidth {
				t.Errorf("TruncateToWidth(%q, %d) width = %d, want <= %d", tt.input, tt.maxWidth, gotWidth, tt.maxWidth)
			}
			if tt.wantLen > 0 && gotWidth != tt.wantLen {
				t.Errorf("TruncateToWidth(%q, %d) width = %d, want %d", tt.input, tt.maxWidth, gotWidth, tt.wantLen)
			}
		})
	}
}
