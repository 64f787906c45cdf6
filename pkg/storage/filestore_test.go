package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/models"
)

func testRecord() *models.StoredCourseRecord {
	return &models.StoredCourseRecord{
		ID:           uuid.New(),
		UserID:       models.DemoUserID,
		CourseName:   "Go Basics",
		Domain:       "Programming",
		NumberOfDays: 5,
		Structure:    &models.CourseOutline{Name: "Go Basics", NumberOfDays: 5},
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, zap.NewNop())

	rec := testRecord()
	require.NoError(t, store.Save(rec))

	loaded, err := store.Load(rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, loaded.ID)
	assert.Equal(t, "Go Basics", loaded.CourseName)
	assert.Equal(t, 5, loaded.Structure.NumberOfDays)
}

func TestSaveFileNaming(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, zap.NewNop())

	rec := testRecord()
	require.NoError(t, store.Save(rec))

	want := filepath.Join(dir, fmt.Sprintf("course_%s_%s.json", rec.ID, rec.UserID))
	_, err := os.Stat(want)
	assert.NoError(t, err)
}

func TestSaveWritesStorageMetadata(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, zap.NewNop())

	rec := testRecord()
	require.NoError(t, store.Save(rec))

	data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("course_%s_%s.json", rec.ID, rec.UserID)))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "stored_at")
	assert.JSONEq(t, `"file_fallback"`, string(raw["storage_method"]))
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "courses")
	store := NewFileStore(dir, zap.NewNop())

	require.NoError(t, store.Save(testRecord()))
}

func TestSaveDirectoryBlockedByFile(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "courses")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	store := NewFileStore(blocker, zap.NewNop())
	assert.Error(t, store.Save(testRecord()))
}
