package generation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/learnaistudio/course-engine/pkg/models"
)

// SynthesizeFallback deterministically produces a complete, schema-valid
// five-day outline for a topic. It is the pipeline's floor: pure function of
// the topic string, no I/O, never fails, so the orchestrator always has
// something valid to return and persist when the generation service is
// unreachable or unparseable.
func SynthesizeFallback(topic string) *models.CourseOutline {
	return &models.CourseOutline{
		Name:            fmt.Sprintf("Complete %s Course", topic),
		Domain:          "General",
		Subtopics:       []string{"Fundamentals", "Core Concepts", "Advanced Topics", "Applications", "Projects"},
		NumberOfDays:    5,
		DifficultyLevel: "beginner",
		EstimatedHours:  15,
		Introduction: []string{
			fmt.Sprintf("Welcome to the comprehensive %s course", topic),
			"This course will take you from beginner to intermediate level",
			"Hands-on exercises and real-world applications included",
		},
		LearningObjectives: []string{
			fmt.Sprintf("Master the fundamentals of %s", topic),
			"Apply concepts to real-world scenarios",
			"Build practical skills through projects",
		},
		Modules: []models.CourseModule{
			{Day: 1, Title: "Introduction and Basics", DurationMinutes: 180, Objectives: []string{"Understand basics", "Get started with fundamentals"}},
			{Day: 2, Title: "Core Concepts", DurationMinutes: 180, Objectives: []string{"Learn core principles", "Practice essential skills"}},
			{Day: 3, Title: "Advanced Topics", DurationMinutes: 180, Objectives: []string{"Master advanced concepts", "Explore complex scenarios"}},
			{Day: 4, Title: "Practical Applications", DurationMinutes: 180, Objectives: []string{"Apply knowledge practically", "Work on real projects"}},
			{Day: 5, Title: "Projects and Assessment", DurationMinutes: 180, Objectives: []string{"Complete capstone projects", "Assess learning outcomes"}},
		},
		DayContent: map[string][]string{
			"Day 1": {"Module 1: Introduction and Overview", "Module 2: Basic Concepts and Terminology", "Module 3: Getting Started with Tools"},
			"Day 2": {"Module 1: Core Theory and Principles", "Module 2: Key Methodologies", "Module 3: Problem Solving Techniques"},
			"Day 3": {"Module 1: Advanced Techniques", "Module 2: Complex Applications", "Module 3: Best Practices and Standards"},
			"Day 4": {"Module 1: Real-world Usage and Case Studies", "Module 2: Industry Applications", "Module 3: Practical Implementation"},
			"Day 5": {"Module 1: Capstone Project Planning", "Module 2: Project Implementation", "Module 3: Review, Assessment, and Next Steps"},
		},
		YouTubeReferences: []models.VideoReference{
			{
				Title:       fmt.Sprintf("%s Complete Tutorial", topic),
				URL:         searchURL("https://www.youtube.com/results?search_query=", topic+" complete tutorial"),
				Description: fmt.Sprintf("Comprehensive tutorial covering %s", topic),
				Duration:    "30-45",
				Level:       "Beginner",
				Channel:     "Educational Channel",
			},
			{
				Title:       fmt.Sprintf("%s Advanced Concepts", topic),
				URL:         searchURL("https://www.youtube.com/results?search_query=", topic+" advanced concepts"),
				Description: fmt.Sprintf("Advanced concepts and techniques in %s", topic),
				Duration:    "45-60",
				Level:       "Advanced",
				Channel:     "Educational Channel",
			},
			{
				Title:       fmt.Sprintf("%s Practical Examples", topic),
				URL:         searchURL("https://www.youtube.com/results?search_query=", topic+" practical examples"),
				Description: fmt.Sprintf("Real-world examples and applications of %s", topic),
				Duration:    "20-30",
				Level:       "Intermediate",
				Channel:     "Educational Channel",
			},
		},
		ReferenceBooks: []models.BookReference{
			{
				Title:  fmt.Sprintf("%s Fundamentals", topic),
				Author: "Expert Author",
				Source: searchURL("https://www.amazon.com/s?k=", topic+" fundamentals"),
			},
			{
				Title:  fmt.Sprintf("Advanced %s", topic),
				Author: "Industry Professional",
				Source: searchURL("https://www.amazon.com/s?k=", "advanced "+topic),
			},
		},
		Assessments: []models.Assessment{
			{Type: "quiz", Title: "Knowledge Check", Description: "Test your understanding of key concepts"},
			{Type: "project", Title: "Practical Application", Description: "Apply your knowledge in a real-world scenario"},
		},
		Projects: []models.Project{
			{
				Title:          fmt.Sprintf("%s Practical Project", topic),
				Description:    fmt.Sprintf("Apply your %s skills in a real-world project", topic),
				EstimatedHours: 5,
			},
		},
		Tags:           []string{strings.ToLower(topic), "education", "course", "learning"},
		Prerequisites:  []string{"Basic computer literacy", "Internet access", "Willingness to learn"},
		TargetAudience: []string{"Students", "Professionals", "Enthusiasts"},
	}
}

// searchURL builds a placeholder search-style reference link. Links are
// constructed from the topic, never fetched.
func searchURL(base, query string) string {
	return base + url.QueryEscape(query)
}
