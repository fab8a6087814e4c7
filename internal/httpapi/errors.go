package httpapi

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectivity wraps transport-level failures (DNS, refused
	// connections, timeouts). The request may never have reached the server.
	ErrConnectivity = errors.New("could not reach the server")

	// ErrUnauthorized is returned after a 401 on an authenticated request;
	// the persisted token has already been cleared by the time the caller
	// sees it.
	ErrUnauthorized = errors.New("session expired or invalid")
)

// APIError is a non-2xx response carrying the server's detail message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Detail extracts a user-facing message from any error produced by the
// client, falling back to the given message when the server supplied none.
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
