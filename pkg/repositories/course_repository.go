package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/models"
)

// CourseRepository provides data access for stored course records.
type CourseRepository interface {
	Insert(ctx context.Context, rec *models.StoredCourseRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoredCourseRecord, error)
	ListActive(ctx context.Context) ([]*models.StoredCourseRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID, archived bool) ([]*models.StoredCourseRecord, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	SearchByName(ctx context.Context, query string) ([]*models.StoredCourseRecord, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository backed by Postgres.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

var _ CourseRepository = (*courseRepository)(nil)

const courseColumns = `
	id, user_id, course_name, domain, introduction, number_of_days,
	modules_created, archived, structure, difficulty_level, estimated_hours,
	category, tags, is_public, created_at`

func (r *courseRepository) Insert(ctx context.Context, rec *models.StoredCourseRecord) error {
	structure, err := json.Marshal(rec.Structure)
	if err != nil {
		return fmt.Errorf("marshal course structure: %w", err)
	}
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("marshal course tags: %w", err)
	}

	query := `
		INSERT INTO courses (
			id, user_id, course_name, domain, introduction, number_of_days,
			modules_created, archived, structure, difficulty_level,
			estimated_hours, category, tags, is_public
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`

	err = r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.CourseName,
		rec.Domain,
		rec.Introduction,
		rec.NumberOfDays,
		rec.ModulesCreated,
		rec.Archived,
		structure,
		rec.DifficultyLevel,
		rec.EstimatedHours,
		rec.Category,
		tags,
		rec.IsPublic,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to insert course: %w", err)
	}

	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredCourseRecord, error) {
	query := `SELECT` + courseColumns + ` FROM courses WHERE id = $1`

	rec, err := scanCourse(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return rec, nil
}

func (r *courseRepository) ListActive(ctx context.Context) ([]*models.StoredCourseRecord, error) {
	query := `SELECT` + courseColumns + ` FROM courses WHERE NOT archived ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

func (r *courseRepository) ListByUser(ctx context.Context, userID uuid.UUID, archived bool) ([]*models.StoredCourseRecord, error) {
	query := `SELECT` + courseColumns + ` FROM courses WHERE user_id = $1 AND archived = $2 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list user courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

func (r *courseRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE courses SET archived = $2 WHERE id = $1`, id, archived)
	if err != nil {
		return fmt.Errorf("failed to update archive status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *courseRepository) SearchByName(ctx context.Context, search string) ([]*models.StoredCourseRecord, error) {
	query := `SELECT` + courseColumns + ` FROM courses
		WHERE NOT archived AND course_name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, search)
	if err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// scanCourse reads one course row, decoding the JSONB columns.
func scanCourse(row pgx.Row) (*models.StoredCourseRecord, error) {
	var rec models.StoredCourseRecord
	var structure, tags []byte

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.CourseName,
		&rec.Domain,
		&rec.Introduction,
		&rec.NumberOfDays,
		&rec.ModulesCreated,
		&rec.Archived,
		&structure,
		&rec.DifficultyLevel,
		&rec.EstimatedHours,
		&rec.Category,
		&tags,
		&rec.IsPublic,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(structure) > 0 {
		if err := json.Unmarshal(structure, &rec.Structure); err != nil {
			return nil, fmt.Errorf("decode course structure: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &rec.Tags); err != nil {
			return nil, fmt.Errorf("decode course tags: %w", err)
		}
	}

	return &rec, nil
}

func collectCourses(rows pgx.Rows) ([]*models.StoredCourseRecord, error) {
	var records []*models.StoredCourseRecord
	for rows.Next() {
		rec, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres duplicate-key error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
