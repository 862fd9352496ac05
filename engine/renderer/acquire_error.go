package renderer

import (
	"errors"
	"fmt"
	"strings"
)

// AcquireStatus classifies why the next presentable image could not be acquired.
type AcquireStatus int

const (
	// AcquireStatusOther is any failure not recognized below. It is treated as fatal.
	AcquireStatusOther AcquireStatus = iota

	// AcquireStatusLost means the surface must be reconfigured before the next frame.
	AcquireStatusLost

	// AcquireStatusOutdated means the surface no longer matches the window and must be reconfigured.
	AcquireStatusOutdated

	// AcquireStatusTimeout means no image became available in time. The frame is skipped.
	AcquireStatusTimeout

	// AcquireStatusOutOfMemory means the device could not allocate the image. The render loop stops.
	AcquireStatusOutOfMemory
)

func (s AcquireStatus) String() string {
	switch s {
	case AcquireStatusLost:
		return "lost"
	case AcquireStatusOutdated:
		return "outdated"
	case AcquireStatusTimeout:
		return "timeout"
	case AcquireStatusOutOfMemory:
		return "out of memory"
	default:
		return "other"
	}
}

// Sentinel errors a FrameBackend may return (or wrap) from BeginFrame.
var (
	ErrSurfaceLost     = errors.New("surface lost")
	ErrSurfaceOutdated = errors.New("surface outdated")
	ErrSurfaceTimeout  = errors.New("surface acquire timed out")
	ErrOutOfMemory     = errors.New("out of memory")
)

// AcquireError is a classified failure to acquire or submit a frame.
type AcquireError struct {
	Status AcquireStatus
	Err    error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("acquire frame (%s): %v", e.Status, e.Err)
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the render loop must stop.
func (e *AcquireError) Fatal() bool {
	switch e.Status {
	case AcquireStatusLost, AcquireStatusOutdated, AcquireStatusTimeout:
		return false
	default:
		return true
	}
}

// ClassifyAcquireError maps a backend error to an AcquireError. Sentinels are matched with
// errors.Is first; otherwise the backend's status text is inspected. A nil error returns nil.
//
// Parameters:
//   - err: the error returned by the backend
//
// Returns:
//   - *AcquireError: the classified error, or nil
func ClassifyAcquireError(err error) *AcquireError {
	if err == nil {
		return nil
	}

	var ae *AcquireError
	if errors.As(err, &ae) {
		return ae
	}

	status := AcquireStatusOther
	switch {
	case errors.Is(err, ErrSurfaceLost):
		status = AcquireStatusLost
	case errors.Is(err, ErrSurfaceOutdated):
		status = AcquireStatusOutdated
	case errors.Is(err, ErrSurfaceTimeout):
		status = AcquireStatusTimeout
	case errors.Is(err, ErrOutOfMemory):
		status = AcquireStatusOutOfMemory
	default:
		status = classifyStatusText(err.Error())
	}
	return &AcquireError{Status: status, Err: err}
}

func classifyStatusText(msg string) AcquireStatus {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "outofmemory"), strings.Contains(msg, "out of memory"):
		return AcquireStatusOutOfMemory
	case strings.Contains(msg, "outdated"):
		return AcquireStatusOutdated
	case strings.Contains(msg, "lost"):
		return AcquireStatusLost
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return AcquireStatusTimeout
	default:
		return AcquireStatusOther
	}
}
