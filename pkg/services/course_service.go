package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/models"
	"github.com/learnaistudio/course-engine/pkg/repositories"
)

// CourseService exposes the read and maintenance operations the dashboard
// needs: listings, detail fetch, archive toggling, search, credit lookup.
// All methods are thin over the repositories; the generation pipeline never
// goes through this service.
type CourseService interface {
	ListActive(ctx context.Context) ([]models.CourseSummary, error)
	ListUserCourses(ctx context.Context, userID uuid.UUID, archived bool) ([]models.CourseSummary, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*models.StoredCourseRecord, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	Search(ctx context.Context, query string) ([]models.CourseSummary, error)
	GetCredit(ctx context.Context, userID uuid.UUID) (int, error)
}

type courseService struct {
	courses repositories.CourseRepository
	users   repositories.UserRepository
	logger  *zap.Logger
}

// NewCourseService creates a new course service over the given repositories.
func NewCourseService(
	courses repositories.CourseRepository,
	users repositories.UserRepository,
	logger *zap.Logger,
) CourseService {
	return &courseService{
		courses: courses,
		users:   users,
		logger:  logger.Named("courses"),
	}
}

func (s *courseService) ListActive(ctx context.Context) ([]models.CourseSummary, error) {
	records, err := s.courses.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(records), nil
}

func (s *courseService) ListUserCourses(ctx context.Context, userID uuid.UUID, archived bool) ([]models.CourseSummary, error) {
	records, err := s.courses.ListByUser(ctx, userID, archived)
	if err != nil {
		return nil, err
	}
	return summarize(records), nil
}

func (s *courseService) GetCourse(ctx context.Context, id uuid.UUID) (*models.StoredCourseRecord, error) {
	return s.courses.GetByID(ctx, id)
}

func (s *courseService) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	if err := s.courses.SetArchived(ctx, id, archived); err != nil {
		return err
	}
	s.logger.Info("course archive status updated",
		zap.String("course_id", id.String()),
		zap.Bool("archived", archived))
	return nil
}

func (s *courseService) Search(ctx context.Context, query string) ([]models.CourseSummary, error) {
	records, err := s.courses.SearchByName(ctx, query)
	if err != nil {
		return nil, err
	}
	return summarize(records), nil
}

func (s *courseService) GetCredit(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Credit, nil
}

func summarize(records []*models.StoredCourseRecord) []models.CourseSummary {
	summaries := make([]models.CourseSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, rec.Summary())
	}
	return summaries
}
