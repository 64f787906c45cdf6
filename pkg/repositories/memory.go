package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/models"
)

// MemoryCourseRepository is an in-memory CourseRepository for tests and for
// running the pipeline without a configured database. Behavior can be
// overridden per-method with the function fields, mirroring the real
// backend's failure modes (duplicate keys, outages).
type MemoryCourseRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.StoredCourseRecord
	order   []uuid.UUID

	// InsertFunc, when set, replaces Insert entirely.
	InsertFunc func(ctx context.Context, rec *models.StoredCourseRecord) error

	InsertCalls int
}

// NewMemoryCourseRepository creates an empty in-memory course repository.
func NewMemoryCourseRepository() *MemoryCourseRepository {
	return &MemoryCourseRepository{records: make(map[uuid.UUID]*models.StoredCourseRecord)}
}

var _ CourseRepository = (*MemoryCourseRepository)(nil)

func (r *MemoryCourseRepository) Insert(ctx context.Context, rec *models.StoredCourseRecord) error {
	r.mu.Lock()
	r.InsertCalls++
	insertFunc := r.InsertFunc
	r.mu.Unlock()

	if insertFunc != nil {
		return insertFunc(ctx, rec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[rec.ID]; exists {
		return apperrors.ErrConflict
	}
	clone := *rec
	r.records[rec.ID] = &clone
	r.order = append(r.order, rec.ID)
	return nil
}

func (r *MemoryCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredCourseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *MemoryCourseRepository) ListActive(ctx context.Context) ([]*models.StoredCourseRecord, error) {
	return r.list(func(rec *models.StoredCourseRecord) bool { return !rec.Archived })
}

func (r *MemoryCourseRepository) ListByUser(ctx context.Context, userID uuid.UUID, archived bool) ([]*models.StoredCourseRecord, error) {
	return r.list(func(rec *models.StoredCourseRecord) bool {
		return rec.UserID == userID && rec.Archived == archived
	})
}

func (r *MemoryCourseRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	rec.Archived = archived
	return nil
}

func (r *MemoryCourseRepository) SearchByName(ctx context.Context, query string) ([]*models.StoredCourseRecord, error) {
	needle := strings.ToLower(query)
	return r.list(func(rec *models.StoredCourseRecord) bool {
		return !rec.Archived && strings.Contains(strings.ToLower(rec.CourseName), needle)
	})
}

func (r *MemoryCourseRepository) list(keep func(*models.StoredCourseRecord) bool) ([]*models.StoredCourseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []*models.StoredCourseRecord
	for _, id := range r.order {
		rec := r.records[id]
		if keep(rec) {
			clone := *rec
			records = append(records, &clone)
		}
	}
	// Newest first, matching the Postgres ordering.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// MemoryUserRepository is an in-memory UserRepository for tests.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User

	// InsertFunc, when set, replaces Insert entirely.
	InsertFunc func(ctx context.Context, user *models.User) error
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]*models.User)}
}

var _ UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *MemoryUserRepository) Insert(ctx context.Context, user *models.User) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, user)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return apperrors.ErrConflict
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *MemoryUserRepository) AdjustCredit(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	user.Credit += delta
	return user.Credit, nil
}
