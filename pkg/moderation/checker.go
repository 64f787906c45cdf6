// Package moderation screens course topics against the content policy
// before generation runs.
package moderation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/generation"
	"github.com/learnaistudio/course-engine/pkg/jsonutil"
	"github.com/learnaistudio/course-engine/pkg/llm"
)

const checkerSystemMessage = "You are a strict course-catalog content reviewer. Respond with JSON only."

// checkerPrompt asks the model to validate and extract a course topic.
// Output contract: {"message": ..., "coursename": ..., "safe": bool}.
func checkerPrompt(input string) string {
	return fmt.Sprintf(`Validate and extract course %q. Ensure the content adheres strictly to the following regulations:

No courses related to human, animal, or bird biology should be accepted, unless pertaining to poisonous or dangerous plants to living organisms.
Strict filtering for any violations or inappropriate content is mandatory.
Output should follow a JSON structure with the following keys:
"message": Course evaluation result message.
"coursename": Extracted and purified course name.
"safe": Boolean (true or false) indicating if the course is acceptable.
Regulations:

Biology courses related to human, animal, or bird operations and practices are strictly prohibited, except those involving information about poisonous or dangerous plants to living organisms.
Ensure the output JSON structure contains the correct keys (message, coursename, safe).
Flag topics that are not educational courses, such as general knowledge queries, current events, or non-academic subjects.
Filter out inputs that contain irrelevant information, including personal queries, factual questions, or speculative topics.
Any study/course through Data is allowed.
The message key should indicate if the course input is acceptable or specify the violation.
The coursename key should contain only the extracted course name without any additional information.
Set safe to true if the course is acceptable; set to false if there is a violation.`, input)
}

// Verdict is the checker's decision about a topic.
type Verdict struct {
	Safe       bool
	CourseName string
	Message    string
}

// Checker validates topics through an OpenAI-compatible endpoint.
type Checker struct {
	client llm.Client
	logger *zap.Logger
}

// NewChecker creates a topic checker over the given LLM client.
func NewChecker(client llm.Client, logger *zap.Logger) *Checker {
	return &Checker{client: client, logger: logger.Named("moderation")}
}

// Check asks the model whether a topic is acceptable. The model's reply is
// repaired with the same extraction strategies as generation responses. An
// error means the check could not be performed; callers are expected to fail
// open, since losing availability to a moderation outage is worse than
// skipping one check.
func (c *Checker) Check(ctx context.Context, topic string) (*Verdict, error) {
	reply, err := c.client.GenerateResponse(ctx, checkerPrompt(topic), checkerSystemMessage, 0)
	if err != nil {
		return nil, fmt.Errorf("checker call: %w", err)
	}

	obj, _, err := generation.ExtractObject(reply)
	if err != nil {
		return nil, fmt.Errorf("checker reply: %w", err)
	}

	verdict := &Verdict{
		CourseName: jsonutil.FlexibleString(obj["coursename"]),
		Message:    jsonutil.FlexibleString(obj["message"]),
	}
	if raw, ok := obj["safe"]; ok {
		// Models occasionally quote the boolean.
		verdict.Safe = jsonutil.FlexibleString(raw) == "true"
	}

	c.logger.Info("topic checked",
		zap.String("topic", topic),
		zap.Bool("safe", verdict.Safe))

	return verdict, nil
}
