package github

import (
	"errors"
	"fmt"
)

// Common GitHub API errors.
var (
	// ErrNotFound is returned when a repository, ref or path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the configured token is rejected.
	ErrUnauthorized = errors.New("unauthorized: check GITHUB_TOKEN")
	// ErrForbidden is returned for a 403 that is not a rate limit.
	ErrForbidden = errors.New("forbidden")
	// ErrRateLimited is returned when GitHub reports an exhausted rate limit.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrMalformed is returned when a success response does not have the expected shape.
	ErrMalformed = errors.New("malformed response")
	// ErrTruncated is returned by callers that need a complete tree and got a truncated one.
	ErrTruncated = errors.New("tree listing truncated")
)

// APIError carries the status and message of an unexpected GitHub response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github API error %d: %s", e.StatusCode, e.Message)
}
