package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracepanic/compyle/pkg/sanitizer"
)

func TestApplyAndCompose(t *testing.T) {
	t.Parallel()

	upper := func(s string) string { return strings.ToUpper(s) }
	exclaim := func(s string) string { return s + "!" }

	assert.Equal(t, "HI!", sanitizer.Apply("hi", upper, exclaim))
	assert.Equal(t, "HI!!", sanitizer.Apply("hi", upper, exclaim, exclaim))
	assert.Equal(t, "hi", sanitizer.Apply("hi"))

	pipeline := sanitizer.Compose(upper, exclaim)
	assert.Equal(t, "A!", pipeline("a"))
	assert.Equal(t, "B!", pipeline("b"))
}

func TestTextTransforms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"trim", sanitizer.TrimSpace, "  hello \n", "hello"},
		{"strip control keeps newline and tab", sanitizer.StripControl, "a\x00b\tc\nd\x1b", "ab\tc\nd"},
		{"strip control normalizes CR", sanitizer.StripControl, "a\r\nb\rc", "a\nb\nc"},
		{"strip control drops zero width", sanitizer.StripControl, "\ufeffhi\u200bthere", "hithere"},
		{"single line", sanitizer.SingleLine, " Build\n  finished\t ok ", "Build finished ok"},
		{"collapse blank lines", sanitizer.CollapseBlankLines, "a  \n\n\n\nb\n", "a\n\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}
