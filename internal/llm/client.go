package llm

import (
	"context"
)

// LLMClient is the generative-text backend consumed by the workflow stages.
// Implementations make exactly one call per invocation; retries are out of scope.
type LLMClient interface {
	InvokeModel(ctx context.Context, request LLMRequest) (*LLMResponse, error)
}
