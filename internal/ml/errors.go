package ml

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited means the AI provider rejected the call with a rate limit
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrCreditsExhausted means the AI provider account is out of credits
	ErrCreditsExhausted = errors.New("AI credits exhausted")
	// ErrNoToolCall means the provider answered without calling the prediction function
	ErrNoToolCall = errors.New("no tool call in response")
	// ErrMalformedPrediction means the function arguments did not form a usable prediction
	ErrMalformedPrediction = errors.New("malformed prediction")
)

// UpstreamError is a non-2xx answer from the AI gateway
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI gateway error: %d", e.StatusCode)
}

// Is lets errors.Is match the rate-limit and credit sentinels by status code
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrCreditsExhausted:
		return e.StatusCode == http.StatusPaymentRequired
	}
	return false
}
