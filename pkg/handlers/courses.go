package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/models"
	"github.com/learnaistudio/course-engine/pkg/services"
)

// CoursesResponse is the listing body shared by the course list endpoints.
type CoursesResponse struct {
	Courses []models.CourseSummary `json:"courses"`
	Count   int                    `json:"count"`
}

// ArchiveRequest is the body of POST /api/courses/{id}/archive.
type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

// CreditResponse is the body of GET /api/users/{userID}/credit.
type CreditResponse struct {
	UserID string `json:"user_id"`
	Credit int    `json:"credit"`
}

// CourseHandler handles course listing, lookup and maintenance endpoints.
type CourseHandler struct {
	courses services.CourseService
	logger  *zap.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courses services.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, logger: logger}
}

// RegisterRoutes registers the course handler's routes on the given mux.
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/courses", h.ListCourses)
	mux.HandleFunc("GET /api/courses/search", h.SearchCourses)
	mux.HandleFunc("GET /api/courses/{id}", h.GetCourse)
	mux.HandleFunc("POST /api/courses/{id}/archive", h.ArchiveCourse)
	mux.HandleFunc("GET /api/users/{userID}/courses", h.ListUserCourses)
	mux.HandleFunc("GET /api/users/{userID}/credit", h.GetCredit)
}

// ListCourses handles GET /api/courses requests.
// Returns all non-archived courses, newest first.
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.courses.ListActive(r.Context())
	if err != nil {
		h.logger.Error("Failed to list courses", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to list courses")
		return
	}
	h.writeListing(w, summaries)
}

// SearchCourses handles GET /api/courses/search?q= requests.
func (h *CourseHandler) SearchCourses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "query parameter 'q' is required")
		return
	}

	summaries, err := h.courses.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to search courses", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to search courses")
		return
	}
	h.writeListing(w, summaries)
}

// GetCourse handles GET /api/courses/{id} requests.
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "course id must be a UUID")
		return
	}

	record, err := h.courses.GetCourse(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "course not found")
			return
		}
		h.logger.Error("Failed to get course", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to get course")
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode course response", zap.Error(err))
	}
}

// ArchiveCourse handles POST /api/courses/{id}/archive requests.
func (h *CourseHandler) ArchiveCourse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "course id must be a UUID")
		return
	}

	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	if err := h.courses.SetArchived(r.Context(), id, req.Archived); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "course not found")
			return
		}
		h.logger.Error("Failed to update archive status", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to update archive status")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":       id.String(),
		"archived": req.Archived,
	}); err != nil {
		h.logger.Error("Failed to encode archive response", zap.Error(err))
	}
}

// ListUserCourses handles GET /api/users/{userID}/courses requests.
// Pass archived=1 to list archived courses instead of active ones.
func (h *CourseHandler) ListUserCourses(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "user id must be a UUID")
		return
	}

	archived := r.URL.Query().Get("archived") == "1"
	summaries, err := h.courses.ListUserCourses(r.Context(), userID, archived)
	if err != nil {
		h.logger.Error("Failed to list user courses", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to list courses")
		return
	}
	h.writeListing(w, summaries)
}

// GetCredit handles GET /api/users/{userID}/credit requests.
func (h *CourseHandler) GetCredit(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "user id must be a UUID")
		return
	}

	credit, err := h.courses.GetCredit(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.logger.Error("Failed to get user credit", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to get credit")
		return
	}

	if err := WriteJSON(w, http.StatusOK, CreditResponse{UserID: userID.String(), Credit: credit}); err != nil {
		h.logger.Error("Failed to encode credit response", zap.Error(err))
	}
}

func (h *CourseHandler) writeListing(w http.ResponseWriter, summaries []models.CourseSummary) {
	if err := WriteJSON(w, http.StatusOK, CoursesResponse{Courses: summaries, Count: len(summaries)}); err != nil {
		h.logger.Error("Failed to encode courses response", zap.Error(err))
	}
}

func (h *CourseHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}
