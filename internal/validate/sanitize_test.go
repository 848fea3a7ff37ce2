package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"trims", "  netflix  ", 0, "netflix"},
		{"null bytes", "net\x00flix", 0, "netflix"},
		{"html tags", "<b>Spotify</b> premium", 0, "Spotify premium"},
		{"javascript protocol", "javascript:alert(1)", 0, "alert(1)"},
		{"event handler", `img onerror=alert(1)`, 0, "img alert(1)"},
		{"collapses whitespace", "a \t\n  b", 0, "a b"},
		{"non-breaking space", "a\u00a0\u00a0b", 0, "a b"},
		{"truncates", "abcdef", 3, "abc"},
		{"truncates runes", "ééééé", 2, "éé"},
		{"nested javascript", "javajavascript:script:x", 0, "x"},
		{"nested tag", "<<b>script>x", 0, "script>x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, tt.max))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Netflix Premium",
		"javajavascript:script:alert(1)",
		"<<a>b>c",
		"ononclick==x",
		"a  <i>b</i>   c \x00 d",
		strings.Repeat("x ", 1500),
		"onon=load=",
		"truncate me here ",
		" lead and trail ",
	}

	for _, in := range inputs {
		for _, max := range []int{0, 5, 16, MaxNameLength} {
			once := Sanitize(in, max)
			assert.Equal(t, once, Sanitize(once, max), "input %q max %d", in, max)
		}
	}
}

func TestUserInput(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := UserInput("  Netflix premium ")
		assert.True(t, r.Valid)
		assert.Equal(t, "Netflix premium", r.Sanitized)
		assert.Empty(t, r.Errors)
	})

	t.Run("empty", func(t *testing.T) {
		r := UserInput("")
		assert.False(t, r.Valid)
		assert.Equal(t, []string{"Input cannot be empty"}, r.Errors)
	})

	t.Run("whitespace only", func(t *testing.T) {
		r := UserInput(strings.Repeat(" ", 3000))
		assert.False(t, r.Valid)
		assert.Equal(t, "Input cannot be empty", r.Err())
	})

	t.Run("too long", func(t *testing.T) {
		r := UserInput(strings.Repeat("a", MaxInputLength+1))
		assert.False(t, r.Valid)
		require.Len(t, r.Errors, 1)
		assert.Contains(t, r.Errors[0], "maximum length")
		assert.Len(t, r.Sanitized, MaxInputLength)
	})

	t.Run("suspicious", func(t *testing.T) {
		for _, in := range []string{
			"data:text/html;base64,xyz",
			"vbscript:msgbox",
			"eval (x)",
			"document.cookie",
			"window.location",
			"img onload",
		} {
			r := UserInput(in)
			assert.False(t, r.Valid, in)
			assert.Contains(t, r.Err(), "suspicious", in)
		}
	})
}

func TestURL(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  string
	}{
		{"https://netflix.com", true, "https://netflix.com"},
		{"netflix.com/signup", true, "https://netflix.com/signup"},
		{"HTTP://example.com", true, "HTTP://example.com"},
		{"localhost:8080", true, "https://localhost:8080"},
		{"ftp://example.com", false, ""},
		{"mailto:me@example.com", false, ""},
		{"javascript:alert(1)", false, ""},
		{"https://example.com/?q=document.cookie", false, ""},
		{"", false, ""},
		{"https://", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r := URL(tt.in)
			assert.Equal(t, tt.valid, r.Valid, r.Errors)
			if tt.valid {
				assert.Equal(t, tt.want, r.Sanitized)
			}
		})
	}
}

func TestURLField(t *testing.T) {
	assert.Equal(t, "https://example.com/account", URLField("example.com/account"))
	assert.Empty(t, URLField("javascript:alert(1)"))
	assert.Empty(t, URLField(42))
	assert.Empty(t, URLField(nil))
	assert.Empty(t, URLField("   "))
}
