package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
	"github.com/learnaistudio/course-engine/pkg/generation"
	"github.com/learnaistudio/course-engine/pkg/models"
	"github.com/learnaistudio/course-engine/pkg/moderation"
)

// OutlineBroker locates a reachable generation-service instance and returns
// its raw response. Implemented by generation.Broker.
type OutlineBroker interface {
	RequestOutline(ctx context.Context, topic string) (*generation.Result, error)
}

// TopicChecker screens topics before generation. Implemented by
// moderation.Checker; nil disables moderation.
type TopicChecker interface {
	Check(ctx context.Context, topic string) (*moderation.Verdict, error)
}

// OutlineService coordinates one course-generation request end to end.
type OutlineService interface {
	// GenerateOutline runs the pipeline for a topic. The error return is
	// reserved for malformed input (apperrors.ErrEmptyTopic) and rejected
	// topics (apperrors.ErrTopicRejected); every downstream failure is
	// absorbed into the outcome's flags instead.
	GenerateOutline(ctx context.Context, topic, userID string) (*models.GenerationOutcome, error)
}

// requestState is the orchestrator's position in the per-request state
// machine. Each request runs the machine at most once; every path reaches
// stateDone.
type requestState int

const (
	stateRequestingFromAI requestState = iota
	stateNormalizingResponse
	stateSynthesizingFallback
	statePersisting
	stateDone
)

func (s requestState) String() string {
	switch s {
	case stateRequestingFromAI:
		return "RequestingFromAi"
	case stateNormalizingResponse:
		return "NormalizingResponse"
	case stateSynthesizingFallback:
		return "SynthesizingFallback"
	case statePersisting:
		return "Persisting"
	default:
		return "Done"
	}
}

type outlineService struct {
	broker  OutlineBroker
	cascade PersistenceCascade
	checker TopicChecker
	logger  *zap.Logger
}

// NewOutlineService creates the orchestrator. checker may be nil when topic
// moderation is not configured.
func NewOutlineService(
	broker OutlineBroker,
	cascade PersistenceCascade,
	checker TopicChecker,
	logger *zap.Logger,
) OutlineService {
	return &outlineService{
		broker:  broker,
		cascade: cascade,
		checker: checker,
		logger:  logger.Named("outline"),
	}
}

func (s *outlineService) GenerateOutline(ctx context.Context, topic, userID string) (*models.GenerationOutcome, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperrors.ErrEmptyTopic
	}
	topic = generation.ExtractTopic(topic)

	if err := s.moderate(ctx, topic); err != nil {
		return nil, err
	}

	outcome := &models.GenerationOutcome{
		ID:     uuid.New(),
		UserID: userID,
	}

	var raw *generation.Result
	state := stateRequestingFromAI
	for state != stateDone {
		switch state {
		case stateRequestingFromAI:
			result, err := s.broker.RequestOutline(ctx, topic)
			if err != nil {
				s.logger.Warn("generation service unreachable, falling back", zap.Error(err))
				state = stateSynthesizingFallback
				break
			}
			raw = result
			state = stateNormalizingResponse

		case stateNormalizingResponse:
			course, strategy, err := generation.NormalizeOutline(raw.Body)
			if err != nil {
				// The raw text is logged for diagnostics and discarded, not retried.
				s.logger.Warn("AI response not parseable, falling back",
					zap.String("endpoint", raw.Endpoint),
					zap.String("raw_response", truncate(raw.Body, 500)),
					zap.Error(err))
				state = stateSynthesizingFallback
				break
			}
			applySchemaFloor(course, topic)
			outcome.Course = course
			outcome.UsingAI = true
			outcome.SourceEndpoint = raw.Endpoint
			outcome.SourceTransport = raw.Transport
			outcome.ParseStrategy = string(strategy)
			state = statePersisting

		case stateSynthesizingFallback:
			outcome.Course = generation.SynthesizeFallback(topic)
			outcome.UsingAI = false
			outcome.UsingFallback = true
			state = statePersisting

		case statePersisting:
			result := s.cascade.Persist(ctx, outcome)
			outcome.SavedToDatabase = result.Saved
			outcome.StorageMethod = result.Method
			outcome.UserID = result.UserID.String()
			outcome.Message = buildMessage(outcome)
			state = stateDone
		}
	}

	s.logger.Info("generation request complete",
		zap.String("topic", topic),
		zap.String("course_id", outcome.ID.String()),
		zap.Bool("using_ai", outcome.UsingAI),
		zap.Bool("using_fallback", outcome.UsingFallback),
		zap.String("storage_method", outcome.StorageMethod))

	return outcome, nil
}

// moderate runs the optional topic check. Checker outages fail open: losing
// availability to a moderation outage is worse than skipping one check.
func (s *outlineService) moderate(ctx context.Context, topic string) error {
	if s.checker == nil {
		return nil
	}
	verdict, err := s.checker.Check(ctx, topic)
	if err != nil {
		s.logger.Warn("topic check unavailable, proceeding", zap.Error(err))
		return nil
	}
	if !verdict.Safe {
		return fmt.Errorf("%w: %s", apperrors.ErrTopicRejected, verdict.Message)
	}
	return nil
}

// applySchemaFloor guarantees the outline invariants every caller relies on:
// non-empty name and domain, at least one day. Only the AI path needs this;
// the synthesizer is schema-valid by construction.
func applySchemaFloor(course *models.CourseOutline, topic string) {
	if course.Name == "" {
		course.Name = topic
	}
	if course.Domain == "" {
		course.Domain = "General"
	}
	if course.NumberOfDays <= 0 {
		if len(course.DayContent) > 0 {
			course.NumberOfDays = len(course.DayContent)
		} else {
			course.NumberOfDays = 5
		}
	}
}

func buildMessage(outcome *models.GenerationOutcome) string {
	if outcome.UsingAI {
		switch outcome.StorageMethod {
		case models.StorageMethodDatabase:
			return "Course generated by AI and saved to database successfully"
		case models.StorageMethodFileFallback:
			return "Course generated by AI and saved to file storage"
		default:
			return "Course generated by AI successfully (storage failed)"
		}
	}
	switch outcome.StorageMethod {
	case models.StorageMethodDatabase:
		return "Course generated with fallback and saved to database"
	case models.StorageMethodFileFallback:
		return "Course generated with fallback and saved to file storage"
	default:
		return "AI server connection failed - using fallback course (storage failed)"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
