package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkflowExists indicates the backend already holds a workflow with
	// this id (HTTP 409 on create). Callers retry as an update.
	ErrWorkflowExists = errors.New("workflow id already exists")

	// ErrBadResponse indicates a 2xx response whose body could not be decoded
	// into the expected shape. Distinct from a request failure.
	ErrBadResponse = errors.New("undecodable backend response")
)

// APIError carries a non-2xx backend response. Body is the raw error text,
// surfaced to the user unmodified.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// ErrorBody returns the verbatim backend error text when err wraps an
// APIError, otherwise err.Error().
func ErrorBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return err.Error()
}
