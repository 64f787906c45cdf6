package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/models"
	"github.com/learnaistudio/course-engine/pkg/repositories"
)

// CourseFileStore is the secondary, file-based storage backend.
type CourseFileStore interface {
	Save(rec *models.StoredCourseRecord) error
}

// PersistenceResult reports how (and whether) a course was persisted.
type PersistenceResult struct {
	Saved  bool
	Method string
	UserID uuid.UUID
}

// PersistenceCascade persists a generated course as durably as possible:
// primary database first, then the file store, never failing the request.
// Storage failures are reported, not raised; generation success and
// persistence success are independent outcomes.
type PersistenceCascade interface {
	Persist(ctx context.Context, outcome *models.GenerationOutcome) PersistenceResult
}

type persistenceCascade struct {
	// courses and users are nil when no primary store is configured, which
	// is a valid state: the cascade starts at the file fallback.
	courses repositories.CourseRepository
	users   repositories.UserRepository
	files   CourseFileStore
	logger  *zap.Logger
}

// NewPersistenceCascade creates the storage cascade. Pass nil repositories
// when the database is not configured.
func NewPersistenceCascade(
	courses repositories.CourseRepository,
	users repositories.UserRepository,
	files CourseFileStore,
	logger *zap.Logger,
) PersistenceCascade {
	return &persistenceCascade{
		courses: courses,
		users:   users,
		files:   files,
		logger:  logger.Named("cascade"),
	}
}

// Persist runs the ordered storage attempts. The outcome's course data is
// read-only here; storage annotations go on the record copy being written.
func (c *persistenceCascade) Persist(ctx context.Context, outcome *models.GenerationOutcome) PersistenceResult {
	userID := c.resolveIdentity(ctx, outcome.UserID)
	rec := buildRecord(outcome, userID)

	if c.courses != nil {
		if c.insertWithRetry(ctx, rec) {
			return PersistenceResult{Saved: true, Method: models.StorageMethodDatabase, UserID: userID}
		}
	} else {
		c.logger.Info("primary store not configured, skipping database storage")
	}

	if err := c.files.Save(rec); err != nil {
		c.logger.Error("file storage failed", zap.Error(err))
		return PersistenceResult{Saved: false, Method: models.StorageMethodNone, UserID: userID}
	}

	return PersistenceResult{Saved: true, Method: models.StorageMethodFileFallback, UserID: userID}
}

// insertWithRetry attempts the primary insert, regenerating the key exactly
// once on a duplicate-key conflict.
func (c *persistenceCascade) insertWithRetry(ctx context.Context, rec *models.StoredCourseRecord) bool {
	err := c.courses.Insert(ctx, rec)
	if err == nil {
		return true
	}
	if errors.Is(err, apperrors.ErrConflict) {
		c.logger.Warn("course id conflict, retrying with a new id",
			zap.String("course_id", rec.ID.String()))
		rec.ID = uuid.New()
		if retryErr := c.courses.Insert(ctx, rec); retryErr == nil {
			return true
		} else {
			err = retryErr
		}
	}
	c.logger.Error("database storage failed", zap.Error(err))
	return false
}

// resolveIdentity maps the caller-supplied identity string onto a valid user
// key and makes sure a user row exists for it. Absent or sentinel identities
// map to the demo user; anything that is not a UUID gets a fresh one
// synthesized rather than being dropped.
func (c *persistenceCascade) resolveIdentity(ctx context.Context, rawUserID string) uuid.UUID {
	rawUserID = strings.TrimSpace(rawUserID)

	var userID uuid.UUID
	var user *models.User
	switch {
	case rawUserID == "" || rawUserID == "anonymous":
		userID = models.DemoUserID
		user = models.NewDemoUser()
	default:
		parsed, err := uuid.Parse(rawUserID)
		if err != nil {
			userID = uuid.New()
			c.logger.Info("synthesized UUID for non-UUID identity",
				zap.String("raw_user_id", rawUserID),
				zap.String("user_id", userID.String()))
		} else {
			userID = parsed
		}
		user = models.NewSyntheticUser(userID)
	}

	if c.users == nil {
		return userID
	}

	if _, err := c.users.GetByID(ctx, userID); err == nil {
		return userID
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		c.logger.Warn("user lookup failed", zap.Error(err))
		return userID
	}

	if err := c.users.Insert(ctx, user); err != nil && !errors.Is(err, apperrors.ErrConflict) {
		c.logger.Warn("failed to create user, falling back to demo identity", zap.Error(err))
		return models.DemoUserID
	}
	return userID
}

// buildRecord prepares the persisted form of a generated course, filling the
// defaults the generation service may have omitted.
func buildRecord(outcome *models.GenerationOutcome, userID uuid.UUID) *models.StoredCourseRecord {
	course := outcome.Course

	name := course.Name
	if name == "" {
		name = "Untitled Course"
	}
	domain := course.Domain
	if domain == "" {
		domain = "General"
	}
	days := course.NumberOfDays
	if days <= 0 {
		days = 5
	}
	difficulty := course.DifficultyLevel
	if difficulty == "" {
		difficulty = "beginner"
	}
	hours := course.EstimatedHours
	if hours <= 0 {
		hours = 15
	}

	return &models.StoredCourseRecord{
		ID:              outcome.ID,
		UserID:          userID,
		CourseName:      name,
		Domain:          domain,
		Introduction:    strings.Join(course.Introduction, " "),
		NumberOfDays:    days,
		Structure:       course,
		DifficultyLevel: difficulty,
		EstimatedHours:  hours,
		Category:        domain,
		Tags:            course.Tags,
	}
}
