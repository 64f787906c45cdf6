package generation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeFallbackIsDeterministic(t *testing.T) {
	first := SynthesizeFallback("Rust")
	second := SynthesizeFallback("Rust")
	assert.Equal(t, first, second)
}

func TestSynthesizeFallbackShape(t *testing.T) {
	course := SynthesizeFallback("Machine Learning")

	assert.Equal(t, "Complete Machine Learning Course", course.Name)
	assert.Equal(t, "General", course.Domain)
	assert.Equal(t, 5, course.NumberOfDays)
	assert.Equal(t, "beginner", course.DifficultyLevel)
	assert.Equal(t, 15, course.EstimatedHours)

	require.Len(t, course.Modules, 5)
	for i, module := range course.Modules {
		assert.Equal(t, i+1, module.Day)
		assert.Equal(t, 180, module.DurationMinutes)
	}

	require.Len(t, course.DayContent, 5)
	for day := 1; day <= 5; day++ {
		titles, ok := course.DayContent[fmt.Sprintf("Day %d", day)]
		require.True(t, ok, "missing day %d", day)
		assert.Len(t, titles, 3)
	}

	assert.Len(t, course.YouTubeReferences, 3)
	assert.Len(t, course.ReferenceBooks, 2)
	assert.Len(t, course.Assessments, 2)
	assert.Len(t, course.Projects, 1)
	assert.Contains(t, course.Tags, "machine learning")
}

func TestSynthesizeFallbackSearchLinks(t *testing.T) {
	course := SynthesizeFallback("C++ Programming")

	// Topics with reserved characters must be query-escaped, not pasted raw.
	assert.Equal(t,
		"https://www.youtube.com/results?search_query=C%2B%2B+Programming+complete+tutorial",
		course.YouTubeReferences[0].URL)
	assert.Equal(t,
		"https://www.amazon.com/s?k=C%2B%2B+Programming+fundamentals",
		course.ReferenceBooks[0].Source)
}
