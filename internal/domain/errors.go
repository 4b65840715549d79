package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRemoteRejection = errors.New("remote service rejected the request")
	ErrNetworkFailure  = errors.New("request did not complete")
)

// RemoteError is a structured failure returned by the API.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote error: status %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteRejection
}
