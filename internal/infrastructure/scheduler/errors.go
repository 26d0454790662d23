package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a stopped sweeper
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrRunInProgress is returned when a sweep is already running
	ErrRunInProgress = errors.New("sweep already in progress")
)

var errJobPanicked = errors.New("job panicked")
