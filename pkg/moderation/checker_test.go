package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/llm"
)

func newCheckerWithReply(reply string, err error) (*Checker, *llm.MockClient) {
	mock := &llm.MockClient{
		GenerateResponseFunc: func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
			return reply, err
		},
	}
	return NewChecker(mock, zap.NewNop()), mock
}

func TestCheckSafeTopic(t *testing.T) {
	checker, mock := newCheckerWithReply(
		`{"message": "Course is acceptable", "coursename": "Rust Programming", "safe": true}`, nil)

	verdict, err := checker.Check(context.Background(), "Rust Programming")
	require.NoError(t, err)

	assert.True(t, verdict.Safe)
	assert.Equal(t, "Rust Programming", verdict.CourseName)
	assert.Equal(t, "Course is acceptable", verdict.Message)
	assert.Equal(t, 1, mock.GenerateResponseCalls)
}

func TestCheckRejectedTopic(t *testing.T) {
	checker, _ := newCheckerWithReply(
		`{"message": "Violates biology regulations", "coursename": "", "safe": false}`, nil)

	verdict, err := checker.Check(context.Background(), "Human Anatomy")
	require.NoError(t, err)
	assert.False(t, verdict.Safe)
	assert.Equal(t, "Violates biology regulations", verdict.Message)
}

func TestCheckQuotedBoolean(t *testing.T) {
	checker, _ := newCheckerWithReply(
		`{"message": "ok", "coursename": "Go", "safe": "true"}`, nil)

	verdict, err := checker.Check(context.Background(), "Go")
	require.NoError(t, err)
	assert.True(t, verdict.Safe)
}

func TestCheckFencedReply(t *testing.T) {
	checker, _ := newCheckerWithReply(
		"```json\n{\"message\": \"ok\", \"coursename\": \"Go\", \"safe\": true}\n```", nil)

	verdict, err := checker.Check(context.Background(), "Go")
	require.NoError(t, err)
	assert.True(t, verdict.Safe)
}

func TestCheckClientError(t *testing.T) {
	checker, _ := newCheckerWithReply("", errors.New("connection refused"))

	_, err := checker.Check(context.Background(), "Go")
	assert.Error(t, err)
}

func TestCheckUnparsableReply(t *testing.T) {
	checker, _ := newCheckerWithReply("I cannot answer that.", nil)

	_, err := checker.Check(context.Background(), "Go")
	assert.Error(t, err)
}
