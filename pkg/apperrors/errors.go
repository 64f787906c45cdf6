package apperrors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrEmptyTopic           = errors.New("course topic is required and must be a non-empty string")
	ErrTopicRejected        = errors.New("course topic rejected by content policy")
	ErrGeneratorUnreachable = errors.New("no AI server reachable")
	ErrUnparsableResponse   = errors.New("no valid JSON object found in AI response")
)
