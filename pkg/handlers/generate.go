package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/models"
	"github.com/learnaistudio/course-engine/pkg/services"
)

// GenerateRequest is the body of POST /api/generate-outline.
type GenerateRequest struct {
	Course string `json:"course"`
	UserID string `json:"user_id"`
}

// GenerateResponse is the success body: the full outline plus generation and
// storage metadata so clients can tell an AI course from a fallback one.
type GenerateResponse struct {
	models.CourseOutline

	ID              string `json:"id"`
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	UsingAI         bool   `json:"using_ai"`
	UsingFallback   bool   `json:"using_fallback"`
	SavedToDatabase bool   `json:"saved_to_database"`
	StorageMethod   string `json:"storage_method"`
	UserID          string `json:"user_id"`
	SourceEndpoint  string `json:"source_endpoint,omitempty"`
}

// generateFailure is the 500 body. The flags are explicit so clients never
// mistake a pipeline crash for a fallback course.
type generateFailure struct {
	Success         bool   `json:"success"`
	Error           string `json:"error"`
	Message         string `json:"message"`
	UsingAI         bool   `json:"using_ai"`
	UsingFallback   bool   `json:"using_fallback"`
	SavedToDatabase bool   `json:"saved_to_database"`
}

// GenerateHandler handles course outline generation requests.
type GenerateHandler struct {
	outlines services.OutlineService
	logger   *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(outlines services.OutlineService, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{outlines: outlines, logger: logger}
}

// RegisterRoutes registers the generation route on the given mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate-outline", h.Generate)
}

// Generate handles POST /api/generate-outline requests.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to encode error response", zap.Error(err))
		}
		return
	}

	outcome, err := h.outlines.GenerateOutline(r.Context(), req.Course, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmptyTopic):
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", apperrors.ErrEmptyTopic.Error()); err != nil {
				h.logger.Error("Failed to encode error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrTopicRejected):
			if err := ErrorResponse(w, http.StatusBadRequest, "topic_rejected", err.Error()); err != nil {
				h.logger.Error("Failed to encode error response", zap.Error(err))
			}
		default:
			h.logger.Error("Generation pipeline failed", zap.Error(err))
			if err := WriteJSON(w, http.StatusInternalServerError, generateFailure{
				Error:   "generation_failed",
				Message: "Failed to generate course outline",
			}); err != nil {
				h.logger.Error("Failed to encode error response", zap.Error(err))
			}
		}
		return
	}

	response := GenerateResponse{
		CourseOutline:   *outcome.Course,
		ID:              outcome.ID.String(),
		Success:         true,
		Message:         outcome.Message,
		UsingAI:         outcome.UsingAI,
		UsingFallback:   outcome.UsingFallback,
		SavedToDatabase: outcome.SavedToDatabase,
		StorageMethod:   outcome.StorageMethod,
		UserID:          outcome.UserID,
		SourceEndpoint:  outcome.SourceEndpoint,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode generate response", zap.Error(err))
	}
}
