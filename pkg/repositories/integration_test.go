package repositories_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/models"
	"github.com/learnaistudio/course-engine/pkg/repositories"
	"github.com/learnaistudio/course-engine/pkg/testhelpers"
)

func seedUser(t *testing.T, users repositories.UserRepository) *models.User {
	t.Helper()
	user := models.NewSyntheticUser(uuid.New())
	require.NoError(t, users.Insert(context.Background(), user))
	return user
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := repositories.NewUserRepository(db.DB.Pool)
	ctx := context.Background()

	user := seedUser(t, users)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, models.DefaultUserCredit, got.Credit)

	byEmail, err := users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepositoryDuplicateInsert(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := repositories.NewUserRepository(db.DB.Pool)
	ctx := context.Background()

	user := seedUser(t, users)
	err := users.Insert(ctx, &models.User{ID: user.ID, Name: "Other", Email: "other-" + user.ID.String() + "@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserRepositoryAdjustCredit(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := repositories.NewUserRepository(db.DB.Pool)
	ctx := context.Background()

	user := seedUser(t, users)

	credit, err := users.AdjustCredit(ctx, user.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserCredit-1, credit)

	_, err = users.AdjustCredit(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCourseRepositoryRoundTrip(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := repositories.NewUserRepository(db.DB.Pool)
	courses := repositories.NewCourseRepository(db.DB.Pool)
	ctx := context.Background()

	owner := seedUser(t, users)
	rec := &models.StoredCourseRecord{
		ID:              uuid.New(),
		UserID:          owner.ID,
		CourseName:      "Go Basics " + uuid.NewString(),
		Domain:          "Programming",
		Introduction:    "An introduction",
		NumberOfDays:    5,
		DifficultyLevel: "beginner",
		EstimatedHours:  15,
		Category:        "Programming",
		Tags:            []string{"go", "education"},
		Structure: &models.CourseOutline{
			Name:         "Go Basics",
			NumberOfDays: 5,
			DayContent:   map[string][]string{"Day 1": {"Module 1: Intro"}},
		},
	}
	require.NoError(t, courses.Insert(ctx, rec))
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := courses.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.CourseName, got.CourseName)
	assert.Equal(t, []string{"go", "education"}, got.Tags)
	require.NotNil(t, got.Structure)
	assert.Equal(t, []string{"Module 1: Intro"}, got.Structure.DayContent["Day 1"])
}

func TestCourseRepositoryDuplicateKey(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := repositories.NewUserRepository(db.DB.Pool)
	courses := repositories.NewCourseRepository(db.DB.Pool)
	ctx := context.Background()

	owner := seedUser(t, users)
	rec := &models.StoredCourseRecord{
		ID:         uuid.New(),
		UserID:     owner.ID,
		CourseName: "Dup " + uuid.NewString(),
	}
	require.NoError(t, courses.Insert(ctx, rec))

	dup := *rec
	err := courses.Insert(ctx, &dup)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCourseRepositoryArchiveAndListings(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := repositories.NewUserRepository(db.DB.Pool)
	courses := repositories.NewCourseRepository(db.DB.Pool)
	ctx := context.Background()

	owner := seedUser(t, users)
	rec := &models.StoredCourseRecord{
		ID:         uuid.New(),
		UserID:     owner.ID,
		CourseName: "Archive Me " + uuid.NewString(),
	}
	require.NoError(t, courses.Insert(ctx, rec))

	active, err := courses.ListByUser(ctx, owner.ID, false)
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, courses.SetArchived(ctx, rec.ID, true))

	active, err = courses.ListByUser(ctx, owner.ID, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := courses.ListByUser(ctx, owner.ID, true)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, rec.ID, archived[0].ID)

	assert.ErrorIs(t, courses.SetArchived(ctx, uuid.New(), true), apperrors.ErrNotFound)
}

func TestCourseRepositorySearch(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	users := repositories.NewUserRepository(db.DB.Pool)
	courses := repositories.NewCourseRepository(db.DB.Pool)
	ctx := context.Background()

	owner := seedUser(t, users)
	marker := uuid.NewString()
	rec := &models.StoredCourseRecord{
		ID:         uuid.New(),
		UserID:     owner.ID,
		CourseName: "Quantum Computing " + marker,
	}
	require.NoError(t, courses.Insert(ctx, rec))

	found, err := courses.SearchByName(ctx, "quantum computing "+marker)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, rec.ID, found[0].ID)
}
