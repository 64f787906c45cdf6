package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInputText(t *testing.T) {
	assert.Equal(t,
		"Generate a comprehensive course outline for: Go",
		BuildInputText("Go"))
}

func TestExtractTopic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare topic", "Rust", "Rust"},
		{"quoted topic wins", `build a course on "Rust Programming" please`, "Rust Programming"},
		{"after last on", "create a course on Linear Algebra", "Linear Algebra"},
		{"on mid-word ignored", "Python fundamentals", "Python fundamentals"},
		{"surrounding whitespace", "  Databases  ", "Databases"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTopic(tt.input))
		})
	}
}
