package generation

import (
	"regexp"
	"strings"
)

var quotedTopicPattern = regexp.MustCompile(`"([^"]+)"`)

// BuildInputText returns the input_text payload sent to the generation
// service for a course topic.
func BuildInputText(topic string) string {
	return "Generate a comprehensive course outline for: " + topic
}

// ExtractTopic pulls the bare course topic out of a longer prompt phrase.
// Callers sometimes send full sentences ('build a course on "Rust"' or
// 'a course on Rust programming'); the quoted form wins, then the text after
// the last "on ", then the input unchanged.
func ExtractTopic(input string) string {
	input = strings.TrimSpace(input)

	if match := quotedTopicPattern.FindStringSubmatch(input); match != nil {
		return match[1]
	}

	if idx := strings.LastIndex(strings.ToLower(input), "on "); idx >= 0 {
		// Only treat "on" as a separator when it starts a word.
		if idx == 0 || input[idx-1] == ' ' {
			if rest := strings.TrimSpace(input[idx+3:]); rest != "" {
				return rest
			}
		}
	}

	return input
}
