package weather

import (
	"errors"
	"fmt"
)

// The error variants below form the closed set of failure conditions
// the core can report. Boundaries that talk to users match on them with
// errors.As and translate; nothing else escapes the containers.

// NetworkError reports a failed upstream call. Detail carries the
// upstream-provided message when one was available.
type NetworkError struct {
	Op     string
	Detail string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: upstream request failed", e.Op)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError reports that a place could not be resolved, either
// locally (refreshing a removed city) or by the upstream.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no weather data for %q", e.What)
}

// PermissionError reports a refused or timed-out location acquisition.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "location unavailable: " + e.Reason
}

// CorruptError reports a malformed durable payload. It is logged for
// diagnosis and otherwise treated as absence, never shown to users.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt stored payload under %q: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
