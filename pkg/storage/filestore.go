// Package storage holds the file-based fallback store used when the primary
// database is unavailable.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/models"
)

// storedFile is the on-disk shape: the full record plus storage metadata so
// files are self-describing when recovered later.
type storedFile struct {
	models.StoredCourseRecord
	StoredAt      time.Time `json:"stored_at"`
	StorageMethod string    `json:"storage_method"`
}

// FileStore persists course records as JSON files keyed by course id and
// user id. It is the durable fallback behind the primary store; concurrency
// safety comes from each record getting its own file.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates a file store rooted at dir. The directory is created
// lazily on first write.
func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	return &FileStore{dir: dir, logger: logger.Named("filestore")}
}

// Save writes the record to <dir>/course_<id>_<userID>.json.
func (s *FileStore) Save(rec *models.StoredCourseRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	data, err := json.MarshalIndent(storedFile{
		StoredCourseRecord: *rec,
		StoredAt:           time.Now().UTC(),
		StorageMethod:      models.StorageMethodFileFallback,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal course record: %w", err)
	}

	path := s.path(rec)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write course file: %w", err)
	}

	s.logger.Info("course saved to file storage", zap.String("path", path))
	return nil
}

// Load reads back a record previously written by Save.
func (s *FileStore) Load(rec *models.StoredCourseRecord) (*models.StoredCourseRecord, error) {
	data, err := os.ReadFile(s.path(rec))
	if err != nil {
		return nil, fmt.Errorf("read course file: %w", err)
	}
	var stored storedFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode course file: %w", err)
	}
	return &stored.StoredCourseRecord, nil
}

func (s *FileStore) path(rec *models.StoredCourseRecord) string {
	name := fmt.Sprintf("course_%s_%s.json", rec.ID, rec.UserID)
	return filepath.Join(s.dir, name)
}
