package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrRefreshInProgress is returned when a manual refresh overlaps a running one
	ErrRefreshInProgress = errors.New("collection refresh already in progress")
)
