// Package timetabletest builds in-memory timetables for tests.
package timetabletest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/travigo/itinerary/pkg/timetable"
)

// Load parses the given stops.txt and stop_times.txt bodies. Every stop is
// kept, so tests can use short ids.
func Load(t testing.TB, stops string, stopTimes string) *timetable.Timetable {
	t.Helper()

	table, err := timetable.Read(strings.NewReader(stops), strings.NewReader(stopTimes), timetable.LoadOptions{})
	require.NoError(t, err)

	return table
}

// SingleTripStops names the three stations served by SingleTripStopTimes.
const SingleTripStops = `stop_id,stop_name
S1,Strasbourg
S2,Saverne
S3,Sarrebourg
`

// SingleTripStopTimes is the single trip S1 -> S2 -> S3.
const SingleTripStopTimes = `trip_id,arrival_time,departure_time,stop_id,stop_sequence
T,,08:00:00,S1,1
T,08:20:00,08:21:00,S2,2
T,08:50:00,,S3,3
`
