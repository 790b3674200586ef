package timetable

import (
	"errors"
	"fmt"
)

// The engine distinguishes two fatal error families. A FeedError means the
// GTFS data itself cannot be interpreted (duplicate calendars, unparsable
// times, a trip visiting a stop twice) and the whole run must be abandoned
// because the source data is untrustworthy. A SpecError means the
// hand-authored timetable spec is malformed (unknown train reference, bad key
// cell, missing reference date) and continuing would silently produce a wrong
// timetable.
//
// "This train does not stop here" is not an error anywhere in this package.

// Sentinel conditions wrapped by FeedError, for use with errors.Is.
var (
	ErrNoTrip       = errors.New("no matching trip")
	ErrTooManyTrips = errors.New("more than one matching trip")
	ErrStopsTwice   = errors.New("trip stops at station more than once")
	ErrBadCalendar  = errors.New("expected exactly one calendar row")
)

// FeedError reports GTFS data the engine cannot interpret.
type FeedError struct {
	msg  string
	kind error
}

func (e *FeedError) Error() string {
	return e.msg
}

func (e *FeedError) Unwrap() error {
	return e.kind
}

func feedErrorf(kind error, format string, args ...any) *FeedError {
	return &FeedError{msg: fmt.Sprintf(format, args...), kind: kind}
}

// SpecError reports a malformed timetable spec.
type SpecError struct {
	msg string
}

func (e *SpecError) Error() string {
	return e.msg
}

func specErrorf(format string, args ...any) *SpecError {
	return &SpecError{msg: fmt.Sprintf(format, args...)}
}
