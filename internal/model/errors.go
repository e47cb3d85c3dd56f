package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrEmptyTimeline is returned when there are no dated tasks to lay out.
	ErrEmptyTimeline = errors.New("no dated tasks")
	// ErrInvalidRange is returned when an end date precedes its start date.
	ErrInvalidRange = errors.New("end date precedes start date")
	// ErrSelfDependency is returned when a task is made to depend on itself.
	ErrSelfDependency = errors.New("task cannot depend on itself")
	// ErrPermission is returned when a mutation is attempted without edit capability.
	ErrPermission = errors.New("permission denied")
	// ErrBackend is returned when the backend rejected or failed a request.
	ErrBackend = errors.New("backend error")
)

// BackendError is a failed backend call.
type BackendError struct {
	// StatusCode is the HTTP status, 0 when the request never got a response.
	StatusCode int
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend error: %s", msg)
	}
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, msg)
}

// Is makes every BackendError match ErrBackend, and the mapped sentinel for well known statuses.
func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrBackend:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func (e *BackendError) Unwrap() error { return e.Err }

// Unauthorized reports whether the backend rejected the credentials.
func (e *BackendError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
