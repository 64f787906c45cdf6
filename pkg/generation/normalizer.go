package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/jsonutil"
	"github.com/learnaistudio/course-engine/pkg/models"
)

// ParseStrategy identifies which repair step produced parseable JSON.
type ParseStrategy string

const (
	// StrategyDirect means the full response text was already valid JSON.
	StrategyDirect ParseStrategy = "direct"
	// StrategyMarkdownFence means the JSON was wrapped in a ```json fence.
	StrategyMarkdownFence ParseStrategy = "markdown_fence"
	// StrategyBracketScan means the JSON was cut out between the first '{'
	// and the last '}' of prose-wrapped text.
	StrategyBracketScan ParseStrategy = "bracket_scan"
)

// fencedBlockPattern matches a markdown code fence, json-tagged or bare,
// whose interior looks like a JSON object.
var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// dayLabelPattern matches the sparse "Day N" keys the generation service
// attaches alongside the declared fields.
var dayLabelPattern = regexp.MustCompile(`(?i)^day\s*([0-9]+)$`)

// ExtractObject locates the JSON object inside raw response text. Strategies
// are tried in order, first success wins: strict parse of the whole text,
// markdown fence extraction, then a scan from the first '{' to the last '}'.
// A strategy only succeeds if its candidate parses to a JSON object; scalars
// and arrays are rejected.
func ExtractObject(raw string) (map[string]json.RawMessage, ParseStrategy, error) {
	if obj, ok := parseObject(raw); ok {
		return obj, StrategyDirect, nil
	}

	if match := fencedBlockPattern.FindStringSubmatch(raw); match != nil {
		if obj, ok := parseObject(match[1]); ok {
			return obj, StrategyMarkdownFence, nil
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if obj, ok := parseObject(raw[start : end+1]); ok {
			return obj, StrategyBracketScan, nil
		}
	}

	return nil, "", apperrors.ErrUnparsableResponse
}

// parseObject attempts a strict parse and requires a top-level object.
func parseObject(text string) (map[string]json.RawMessage, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// NormalizeOutline turns raw generation-service text into a canonical
// CourseOutline. The service's output shape varies (key casing, snake/camel
// aliases, strings where numbers belong, prose or fences around the JSON),
// so decoding is deliberately permissive: any field may be absent and no
// structural validation happens beyond requiring a top-level object.
// Defaults for missing fields are applied later, at persistence time.
func NormalizeOutline(raw string) (*models.CourseOutline, ParseStrategy, error) {
	obj, strategy, err := ExtractObject(raw)
	if err != nil {
		return nil, "", err
	}

	outline := &models.CourseOutline{
		Name:            jsonutil.FlexibleString(firstRaw(obj, "name", "coursename", "course_name", "courseName")),
		Domain:          jsonutil.FlexibleString(firstRaw(obj, "domain", "category")),
		Subtopics:       jsonutil.FlexibleStringSlice(firstRaw(obj, "subtopics", "sub_topics")),
		NumberOfDays:    jsonutil.FlexibleInt(firstRaw(obj, "numberofdays", "number_of_days", "numberOfDays")),
		DifficultyLevel: jsonutil.FlexibleString(firstRaw(obj, "difficulty_level", "difficultyLevel", "difficulty")),
		EstimatedHours:  jsonutil.FlexibleInt(firstRaw(obj, "estimated_hours", "estimatedHours")),

		Introduction:       jsonutil.FlexibleStringSlice(firstRaw(obj, "Introduction", "introduction", "description")),
		LearningObjectives: jsonutil.FlexibleStringSlice(firstRaw(obj, "learning_objectives", "learningObjectives")),

		Modules:    decodeModules(firstRaw(obj, "modules")),
		DayContent: decodeDayContent(obj),

		Tags:           jsonutil.FlexibleStringSlice(firstRaw(obj, "tags")),
		Prerequisites:  jsonutil.FlexibleStringSlice(firstRaw(obj, "prerequisites")),
		TargetAudience: jsonutil.FlexibleStringSlice(firstRaw(obj, "target_audience", "targetAudience")),
	}

	decodeInto(firstRaw(obj, "YouTubeReferences", "youtube_references", "youtubeReferences"), &outline.YouTubeReferences)
	decodeInto(firstRaw(obj, "ReferenceBooks", "reference_books", "referenceBooks"), &outline.ReferenceBooks)
	decodeInto(firstRaw(obj, "assessments"), &outline.Assessments)
	decodeInto(firstRaw(obj, "projects"), &outline.Projects)

	return outline, strategy, nil
}

// firstRaw returns the value of the first alias key present in obj.
func firstRaw(obj map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, key := range keys {
		if raw, ok := obj[key]; ok {
			return raw
		}
	}
	return nil
}

// decodeInto unmarshals raw into target, silently leaving target untouched
// on a shape mismatch. Losing an unreadable optional list beats failing the
// whole normalization.
func decodeInto(raw json.RawMessage, target any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, target)
}

// decodeModules reads the modules list, tolerating day numbers arriving as
// strings and missing optional fields.
func decodeModules(raw json.RawMessage) []models.CourseModule {
	if len(raw) == 0 {
		return nil
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	modules := make([]models.CourseModule, 0, len(items))
	for _, item := range items {
		module := models.CourseModule{
			Day:             jsonutil.FlexibleInt(firstRaw(item, "day")),
			Title:           jsonutil.FlexibleString(firstRaw(item, "title")),
			DurationMinutes: jsonutil.FlexibleInt(firstRaw(item, "duration_minutes", "durationMinutes")),
			Objectives:      jsonutil.FlexibleStringSlice(firstRaw(item, "objectives")),
		}
		if module.Title == "" && module.Day == 0 {
			continue
		}
		modules = append(modules, module)
	}
	return modules
}

// decodeDayContent collects the sparse "Day N" keys into canonical labels.
// Mismatches with the declared day count are preserved as-is.
func decodeDayContent(obj map[string]json.RawMessage) map[string][]string {
	var content map[string][]string
	for key, raw := range obj {
		match := dayLabelPattern.FindStringSubmatch(strings.TrimSpace(key))
		if match == nil {
			continue
		}
		titles := jsonutil.FlexibleStringSlice(raw)
		if titles == nil {
			continue
		}
		if content == nil {
			content = make(map[string][]string)
		}
		content[fmt.Sprintf("Day %s", match[1])] = titles
	}
	return content
}
