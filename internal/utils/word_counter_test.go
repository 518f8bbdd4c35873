package utils

import (
	"strings"
	"testing"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "plain words",
			content: "Executive summary draft",
			want:    3,
		},
		{
			name:    "empty",
			content: "",
			want:    0,
		},
		{
			name:    "whitespace only",
			content: "  \n\t  ",
			want:    0,
		},
		{
			name:    "html tags stripped",
			content: "<p>Hello <b>wide</b> world</p>",
			want:    3,
		},
		{
			name:    "adjacent tags are word boundaries",
			content: "<p>first</p><p>second</p>",
			want:    2,
		},
		{
			name:    "entities collapse",
			content: "Fish &amp; Chips",
			want:    3,
		},
		{
			name:    "nbsp is whitespace",
			content: "one&nbsp;two",
			want:    2,
		},
		{
			name:    "markup only",
			content: "<div><br/></div>",
			want:    0,
		},
		{
			name:    "multiline",
			content: "line one\nline two\n\nline three",
			want:    6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.content); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "no markup",
			content: "plain text",
			want:    "plain text",
		},
		{
			name:    "tags become spaces",
			content: "a<br>b",
			want:    "a b",
		},
		{
			name:    "entities decoded",
			content: "&lt;tag&gt; &quot;quoted&quot; it&#39;s",
			want:    `<tag> "quoted" it's`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.content); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Run("short strings pass through", func(t *testing.T) {
		if got := Truncate("short", 10); got != "short" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("long strings get an ellipsis", func(t *testing.T) {
		got := Truncate(strings.Repeat("a", 50), 10)
		if got != strings.Repeat("a", 10)+"..." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("never splits a rune", func(t *testing.T) {
		s := strings.Repeat("é", 10) // 2 bytes each
		got := Truncate(s, 5)
		if !strings.HasSuffix(got, "...") {
			t.Fatalf("got %q, want ellipsis", got)
		}
		trimmed := strings.TrimSuffix(got, "...")
		for _, r := range trimmed {
			if r != 'é' {
				t.Errorf("rune split: %q", got)
			}
		}
	})
}
