package timetable

import (
	"github.com/rs/zerolog"
)

// Reasons a row is skipped during a load.
const (
	SkipMissingStopID       = "missing_stop_id"
	SkipMissingStopName     = "missing_stop_name"
	SkipDuplicateStop       = "duplicate_stop_id"
	SkipStopArea            = "stop_area"
	SkipNotRoutable         = "not_routable"
	SkipMissingTripID       = "missing_trip_id"
	SkipInvalidSequence     = "invalid_stop_sequence"
	SkipInvalidTime         = "invalid_time_format"
	SkipInvalidBoardingFlag = "invalid_boarding_flag"
)

// LoadReport summarises one table load.
type LoadReport struct {
	File   string
	Rows   int
	Loaded int

	// Filtered counts rows dropped on purpose (stop areas, non-routable namespaces).
	Filtered map[string]int
	// Skipped counts malformed rows by reason.
	Skipped map[string]int
}

func newLoadReport(file string) LoadReport {
	return LoadReport{
		File:     file,
		Filtered: map[string]int{},
		Skipped:  map[string]int{},
	}
}

func (r LoadReport) SkippedRows() int {
	total := 0
	for _, count := range r.Skipped {
		total += count
	}

	return total
}

func (r LoadReport) FilteredRows() int {
	total := 0
	for _, count := range r.Filtered {
		total += count
	}

	return total
}

func (r LoadReport) MarshalZerologObject(e *zerolog.Event) {
	e.Str("file", r.File).
		Int("rows", r.Rows).
		Int("loaded", r.Loaded).
		Int("filtered", r.FilteredRows()).
		Int("skipped", r.SkippedRows())
}
