// Package incidents provides a client for the remote incident-listing endpoint.
package incidents

import (
	"errors"
	"net/http"
)

// QueryError is the single failure kind of a search request: transport
// failures, non-2xx responses, and undecodable bodies all surface as one.
type QueryError struct {
	Err error
	// StatusCode is the HTTP status of the response, or 0 when no response
	// was received.
	StatusCode int
}

func (e *QueryError) Error() string {
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return queryErr.StatusCode
	}
	return 0
}

// IsServerError checks if the status code indicates a server error (5xx).
func IsServerError(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError
}
