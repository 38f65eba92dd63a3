package persistence

import "errors"

var (
	// ErrWorkflowNotFound is returned when a workflow does not exist.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrRunNotFound is returned when a run record does not exist.
	ErrRunNotFound = errors.New("run not found")
)

func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
