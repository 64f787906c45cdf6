package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSummaryProgress(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		modules int
		want    int
	}{
		{"no modules yet", 5, 0, 0},
		{"partial", 5, 2, 40},
		{"complete", 5, 5, 100},
		{"overfilled caps at 100", 5, 7, 100},
		{"zero days avoids division", 0, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := StoredCourseRecord{
				ID:             uuid.New(),
				NumberOfDays:   tt.days,
				ModulesCreated: tt.modules,
			}
			assert.Equal(t, tt.want, rec.Summary().Progress)
		})
	}
}

func TestSummaryCopiesFields(t *testing.T) {
	rec := StoredCourseRecord{
		ID:              uuid.New(),
		UserID:          DemoUserID,
		CourseName:      "Go Basics",
		Domain:          "Programming",
		NumberOfDays:    5,
		EstimatedHours:  15,
		DifficultyLevel: "beginner",
	}

	summary := rec.Summary()
	assert.Equal(t, rec.ID, summary.ID)
	assert.Equal(t, "Go Basics", summary.CourseName)
	assert.Equal(t, "beginner", summary.Difficulty)
	assert.Equal(t, DemoUserID, summary.UserID)
}

func TestNewDemoUser(t *testing.T) {
	user := NewDemoUser()
	assert.Equal(t, DemoUserID, user.ID)
	assert.Equal(t, "demo@learnaistudio.com", user.Email)
	assert.Equal(t, DefaultUserCredit, user.Credit)
}

func TestNewSyntheticUser(t *testing.T) {
	id := uuid.New()
	user := NewSyntheticUser(id)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "user-"+id.String()+"@learnaistudio.com", user.Email)
	assert.Equal(t, DefaultUserCredit, user.Credit)
}
