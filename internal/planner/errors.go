package planner

import "errors"

var (
	// ErrNotReady is returned by every mutation until the initial load has completed.
	ErrNotReady = errors.New("planner is still loading")
	// ErrAlreadyLoaded is returned by a second Load on the same State.
	ErrAlreadyLoaded = errors.New("planner already loaded")
)
