package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseOutline is the canonical structured representation of a generated
// course. It is produced exactly once per request, either by normalizing the
// AI service's response or by the fallback synthesizer; downstream code only
// ever consumes this type. Every field may be absent in the service's raw
// output, so consumers must treat zero values as "not supplied".
type CourseOutline struct {
	Name            string   `json:"name"`
	Domain          string   `json:"domain"`
	Subtopics       []string `json:"subtopics,omitempty"`
	NumberOfDays    int      `json:"number_of_days"`
	DifficultyLevel string   `json:"difficulty_level,omitempty"`
	EstimatedHours  int      `json:"estimated_hours,omitempty"`

	Introduction       []string `json:"introduction,omitempty"`
	LearningObjectives []string `json:"learning_objectives,omitempty"`

	// Modules is the ordered day/title sequence.
	Modules []CourseModule `json:"modules,omitempty"`

	// DayContent maps "Day N" labels to ordered module-title strings. Sparse:
	// only days the service actually described are present, and keys are not
	// required to agree with NumberOfDays.
	DayContent map[string][]string `json:"day_content,omitempty"`

	YouTubeReferences []VideoReference `json:"youtube_references,omitempty"`
	ReferenceBooks    []BookReference  `json:"reference_books,omitempty"`
	Assessments       []Assessment     `json:"assessments,omitempty"`
	Projects          []Project        `json:"projects,omitempty"`

	Tags           []string `json:"tags,omitempty"`
	Prerequisites  []string `json:"prerequisites,omitempty"`
	TargetAudience []string `json:"target_audience,omitempty"`
}

// CourseModule is one day's entry in the course plan.
type CourseModule struct {
	Day             int      `json:"day"`
	Title           string   `json:"title"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Objectives      []string `json:"objectives,omitempty"`
}

// VideoReference is a linked video resource.
type VideoReference struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Level       string `json:"level,omitempty"`
	Channel     string `json:"channel,omitempty"`
}

// BookReference is a linked reading resource.
type BookReference struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Source string `json:"source"`
}

// Assessment is an evaluation item attached to a course.
type Assessment struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Project is a hands-on project attached to a course.
type Project struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	EstimatedHours int    `json:"estimated_hours,omitempty"`
}

// Storage method values reported by the persistence cascade.
const (
	StorageMethodDatabase     = "database"
	StorageMethodFileFallback = "file_fallback"
	StorageMethodNone         = "none"
)

// GenerationOutcome wraps a CourseOutline with metadata describing how it was
// produced and whether it was persisted. It lives for the duration of one
// request and is the orchestrator's return value.
type GenerationOutcome struct {
	Course *CourseOutline

	ID     uuid.UUID
	UserID string

	UsingAI         bool
	UsingFallback   bool
	SavedToDatabase bool
	StorageMethod   string
	Message         string

	// SourceEndpoint and SourceTransport identify which candidate/transport
	// the broker succeeded with, for diagnostics. Empty on the fallback path.
	SourceEndpoint  string
	SourceTransport string

	// ParseStrategy records which normalization strategy succeeded.
	ParseStrategy string
}

// StoredCourseRecord is the persisted form of a generated course: the outline
// plus ownership and lifecycle columns. Records are created once per
// successful generation and never mutated by the pipeline; archiving happens
// through the course service.
type StoredCourseRecord struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	CourseName      string         `json:"course_name"`
	Domain          string         `json:"domain"`
	Introduction    string         `json:"introduction"`
	NumberOfDays    int            `json:"number_of_days"`
	ModulesCreated  int            `json:"modules_created"`
	Archived        bool           `json:"archived"`
	Structure       *CourseOutline `json:"structure"`
	DifficultyLevel string         `json:"difficulty_level"`
	EstimatedHours  int            `json:"estimated_hours"`
	Category        string         `json:"category"`
	Tags            []string       `json:"tags"`
	IsPublic        bool           `json:"is_public"`
	CreatedAt       time.Time      `json:"created_at"`
}

// CourseSummary is the listing shape returned by the courses endpoints.
type CourseSummary struct {
	ID             uuid.UUID `json:"id"`
	CourseName     string    `json:"course_name"`
	Domain         string    `json:"domain"`
	NumberOfDays   int       `json:"number_of_days"`
	EstimatedHours int       `json:"estimated_hours"`
	Difficulty     string    `json:"difficulty"`
	CreatedAt      time.Time `json:"created_at"`
	UserID         uuid.UUID `json:"user_id"`

	// Progress is the percentage of days with created modules. Derived from
	// stored counts so repeated fetches agree.
	Progress int `json:"progress"`
}

// Summary derives the listing shape from a stored record.
func (r *StoredCourseRecord) Summary() CourseSummary {
	progress := 0
	if r.NumberOfDays > 0 {
		progress = r.ModulesCreated * 100 / r.NumberOfDays
		if progress > 100 {
			progress = 100
		}
	}
	return CourseSummary{
		ID:             r.ID,
		CourseName:     r.CourseName,
		Domain:         r.Domain,
		NumberOfDays:   r.NumberOfDays,
		EstimatedHours: r.EstimatedHours,
		Difficulty:     r.DifficultyLevel,
		CreatedAt:      r.CreatedAt,
		UserID:         r.UserID,
		Progress:       progress,
	}
}
