package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/generation"
	"github.com/learnaistudio/course-engine/pkg/models"
	"github.com/learnaistudio/course-engine/pkg/moderation"
	"github.com/learnaistudio/course-engine/pkg/repositories"
)

type stubBroker struct {
	result *generation.Result
	err    error
	calls  int
}

func (b *stubBroker) RequestOutline(ctx context.Context, topic string) (*generation.Result, error) {
	b.calls++
	return b.result, b.err
}

type stubChecker struct {
	verdict *moderation.Verdict
	err     error
}

func (c *stubChecker) Check(ctx context.Context, topic string) (*moderation.Verdict, error) {
	return c.verdict, c.err
}

type outlineFixture struct {
	service OutlineService
	courses *repositories.MemoryCourseRepository
	files   *stubFileStore
}

func newOutlineFixture(broker OutlineBroker, checker TopicChecker) *outlineFixture {
	courses := repositories.NewMemoryCourseRepository()
	users := repositories.NewMemoryUserRepository()
	files := &stubFileStore{}
	cascade := NewPersistenceCascade(courses, users, files, zap.NewNop())
	return &outlineFixture{
		service: NewOutlineService(broker, cascade, checker, zap.NewNop()),
		courses: courses,
		files:   files,
	}
}

func TestGenerateOutlineEmptyTopic(t *testing.T) {
	broker := &stubBroker{}
	fixture := newOutlineFixture(broker, nil)

	for _, topic := range []string{"", "   "} {
		_, err := fixture.service.GenerateOutline(context.Background(), topic, "")
		assert.ErrorIs(t, err, apperrors.ErrEmptyTopic, "topic=%q", topic)
	}
	assert.Zero(t, broker.calls)
	assert.Zero(t, fixture.courses.InsertCalls)
}

func TestGenerateOutlineAIPath(t *testing.T) {
	broker := &stubBroker{result: &generation.Result{
		Body:      `{"name": "Go Basics", "domain": "Programming", "number_of_days": 3, "Day 1": ["Module 1: Intro"]}`,
		Endpoint:  "http://127.0.0.1:6000",
		Transport: "pooled",
	}}
	fixture := newOutlineFixture(broker, nil)

	outcome, err := fixture.service.GenerateOutline(context.Background(), "Go", "")
	require.NoError(t, err)

	assert.True(t, outcome.UsingAI)
	assert.False(t, outcome.UsingFallback)
	assert.True(t, outcome.SavedToDatabase)
	assert.Equal(t, models.StorageMethodDatabase, outcome.StorageMethod)
	assert.Equal(t, "Go Basics", outcome.Course.Name)
	assert.Equal(t, 3, outcome.Course.NumberOfDays)
	assert.Equal(t, "http://127.0.0.1:6000", outcome.SourceEndpoint)
	assert.Equal(t, "pooled", outcome.SourceTransport)
	assert.Equal(t, string(generation.StrategyDirect), outcome.ParseStrategy)
	assert.Equal(t, "Course generated by AI and saved to database successfully", outcome.Message)
	assert.Equal(t, models.DemoUserID.String(), outcome.UserID)

	rec, err := fixture.courses.GetByID(context.Background(), outcome.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", rec.CourseName)
}

func TestGenerateOutlineSchemaFloor(t *testing.T) {
	broker := &stubBroker{result: &generation.Result{
		Body: `{"Day 1": ["Module 1: Intro"], "Day 2": ["Module 1: More"]}`,
	}}
	fixture := newOutlineFixture(broker, nil)

	outcome, err := fixture.service.GenerateOutline(context.Background(), "Go", "")
	require.NoError(t, err)

	// A sparse AI response still satisfies the outline guarantees.
	assert.Equal(t, "Go", outcome.Course.Name)
	assert.Equal(t, "General", outcome.Course.Domain)
	assert.Equal(t, 2, outcome.Course.NumberOfDays)
}

func TestGenerateOutlineUnreachableFallsBack(t *testing.T) {
	broker := &stubBroker{err: apperrors.ErrGeneratorUnreachable}
	fixture := newOutlineFixture(broker, nil)

	outcome, err := fixture.service.GenerateOutline(context.Background(), "Rust programming", "")
	require.NoError(t, err)

	assert.False(t, outcome.UsingAI)
	assert.True(t, outcome.UsingFallback)
	assert.True(t, outcome.SavedToDatabase)
	assert.Equal(t, models.StorageMethodDatabase, outcome.StorageMethod)
	assert.Equal(t, "Course generated with fallback and saved to database", outcome.Message)

	assert.Equal(t, "Complete Rust programming Course", outcome.Course.Name)
	assert.Equal(t, 5, outcome.Course.NumberOfDays)
	require.Len(t, outcome.Course.DayContent, 5)
	for _, titles := range outcome.Course.DayContent {
		assert.Len(t, titles, 3)
	}
}

func TestGenerateOutlineUnparsableFallsBack(t *testing.T) {
	broker := &stubBroker{result: &generation.Result{Body: "I'm sorry, I can't produce JSON today."}}
	fixture := newOutlineFixture(broker, nil)

	outcome, err := fixture.service.GenerateOutline(context.Background(), "Go", "")
	require.NoError(t, err)

	assert.False(t, outcome.UsingAI)
	assert.True(t, outcome.UsingFallback)
	assert.Equal(t, "Complete Go Course", outcome.Course.Name)
}

func TestGenerateOutlineStorageOutage(t *testing.T) {
	broker := &stubBroker{err: apperrors.ErrGeneratorUnreachable}
	files := &stubFileStore{saveErr: errors.New("disk full")}
	courses := repositories.NewMemoryCourseRepository()
	courses.InsertFunc = func(ctx context.Context, rec *models.StoredCourseRecord) error {
		return errors.New("connection refused")
	}
	cascade := NewPersistenceCascade(courses, repositories.NewMemoryUserRepository(), files, zap.NewNop())
	service := NewOutlineService(broker, cascade, nil, zap.NewNop())

	outcome, err := service.GenerateOutline(context.Background(), "Go", "")
	require.NoError(t, err)

	// The request still succeeds; only the storage flags report the outage.
	assert.True(t, outcome.UsingFallback)
	assert.False(t, outcome.SavedToDatabase)
	assert.Equal(t, models.StorageMethodNone, outcome.StorageMethod)
	assert.Equal(t, "AI server connection failed - using fallback course (storage failed)", outcome.Message)
}

func TestGenerateOutlineTopicExtraction(t *testing.T) {
	broker := &stubBroker{err: apperrors.ErrGeneratorUnreachable}
	fixture := newOutlineFixture(broker, nil)

	outcome, err := fixture.service.GenerateOutline(context.Background(), `a course on "Linear Algebra"`, "")
	require.NoError(t, err)
	assert.Equal(t, "Complete Linear Algebra Course", outcome.Course.Name)
}

func TestGenerateOutlineModerationRejects(t *testing.T) {
	checker := &stubChecker{verdict: &moderation.Verdict{Safe: false, Message: "Violates biology regulations"}}
	broker := &stubBroker{}
	fixture := newOutlineFixture(broker, checker)

	_, err := fixture.service.GenerateOutline(context.Background(), "Human Anatomy", "")
	require.ErrorIs(t, err, apperrors.ErrTopicRejected)
	assert.Contains(t, err.Error(), "Violates biology regulations")
	assert.Zero(t, broker.calls)
}

func TestGenerateOutlineModerationFailsOpen(t *testing.T) {
	checker := &stubChecker{err: errors.New("llm unavailable")}
	broker := &stubBroker{err: apperrors.ErrGeneratorUnreachable}
	fixture := newOutlineFixture(broker, checker)

	outcome, err := fixture.service.GenerateOutline(context.Background(), "Go", "")
	require.NoError(t, err)
	assert.True(t, outcome.UsingFallback)
}

func TestGenerateOutlineModerationAllows(t *testing.T) {
	checker := &stubChecker{verdict: &moderation.Verdict{Safe: true, CourseName: "Go"}}
	broker := &stubBroker{result: &generation.Result{Body: `{"name": "Go Basics"}`}}
	fixture := newOutlineFixture(broker, checker)

	outcome, err := fixture.service.GenerateOutline(context.Background(), "Go", "")
	require.NoError(t, err)
	assert.True(t, outcome.UsingAI)
}
