package timetable

import "errors"

var (
	// ErrMalformedFeed is fatal: a table is missing a required column or cannot be read as CSV.
	ErrMalformedFeed = errors.New("malformed feed")

	// ErrInvalidTimeFormat marks a time value that is present but not HH:MM:SS.
	ErrInvalidTimeFormat = errors.New("invalid time format")
)
