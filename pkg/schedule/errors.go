package schedule

import "errors"

var (
	// ErrTaskAlreadyRegistered is returned when trying to register a duplicate task
	ErrTaskAlreadyRegistered = errors.New("task already registered")

	// ErrTaskNotFound is returned when running a task that was never registered
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoTasks is returned by Start when nothing has been registered
	ErrNoTasks = errors.New("scheduler has no registered tasks")

	// ErrInvalidTask is returned for an empty name, nil schedule or nil handler
	ErrInvalidTask = errors.New("invalid task definition")

	// ErrAlreadyRunning is returned by Start on a scheduler that is already running
	ErrAlreadyRunning = errors.New("scheduler already running")

	// ErrTaskBusy is returned by Run when the task is still executing
	ErrTaskBusy = errors.New("task is already running")
)
