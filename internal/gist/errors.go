package gist

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from GitHub. Body is the response text
// as received.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API returns error %s: %s", e.Status, e.Body)
}

// DeviceFlowError is a terminal error code returned by the access token
// endpoint, e.g. access_denied or expired_token.
type DeviceFlowError struct {
	Code        string
	Description string
}

func (e *DeviceFlowError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("device authorization failed: %s", e.Code)
	}
	return fmt.Sprintf("device authorization failed: %s: %s", e.Code, e.Description)
}

var (
	// ErrNothingToUpdate is returned by Update when the request changes nothing.
	ErrNothingToUpdate = errors.New("nothing to update: give a description, files or files to remove")

	errAuthorizationPending = errors.New("authorization pending")
)
