package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad matches any *LoadError via errors.Is.
	ErrLoad = errors.New("load failed")
	// ErrSave matches any *SaveError via errors.Is.
	ErrSave = errors.New("save failed")
)

// LoadError reports a transport, status, or decode failure of the startup fetch.
type LoadError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("load %s: http %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Endpoint, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// SaveError reports a transport-level failure of a best-effort send. The remote's
// answer is never inspected, so there is no status to report.
type SaveError struct {
	Endpoint string
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Endpoint, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool { return target == ErrSave }
