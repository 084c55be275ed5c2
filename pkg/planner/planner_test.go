package planner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/itinerary/pkg/journeygraph"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/timetable"
	"github.com/travigo/itinerary/pkg/timetable/timetabletest"
)

const networkStops = `stop_id,stop_name
A1,Strasbourg
A2,Strasbourg
X1,Saverne
B1,Sarrebourg
Z1,Colmar
Y1,Mulhouse
`

const networkStopTimes = `trip_id,arrival_time,departure_time,stop_id,stop_sequence
T1,,08:00:00,A1,1
T1,08:30:00,08:31:00,X1,2
T1,09:00:00,,B1,3
T2,,09:00:00,A2,1
T2,09:10:00,,X1,2
T3,,08:20:00,X1,1
T3,08:40:00,,B1,2
T4,,10:00:00,Z1,1
T4,10:30:00,,Y1,2
`

func clock(t *testing.T, value string) timetable.Clock {
	c, ok, err := timetable.ParseClock(value)
	require.NoError(t, err)
	require.True(t, ok)
	return c
}

func newPlanner(t *testing.T, stops string, stopTimes string) *Planner {
	table := timetabletest.Load(t, stops, stopTimes)

	manager := snapshot.NewManager("test", nil)
	manager.Swap(snapshot.Build("test", table, snapshot.NameMatchExact))

	return New(manager)
}

func notFound(t *testing.T, err error) *NotFoundError {
	var notFoundErr *NotFoundError
	require.True(t, errors.As(err, &notFoundErr), "expected NotFoundError, got %v", err)
	return notFoundErr
}

func TestPlanSingleTrip(t *testing.T) {
	planner := newPlanner(t, timetabletest.SingleTripStops, timetabletest.SingleTripStopTimes)

	itinerary, err := planner.Plan(context.Background(), []string{"Strasbourg", "Sarrebourg"}, clock(t, "07:30:00"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Strasbourg", "Saverne", "Sarrebourg"}, itinerary.Stops)
	assert.Equal(t, []string{"S1", "S2", "S3"}, itinerary.StopIDs)
	assert.Equal(t, 2940, itinerary.Duration)
	assert.Equal(t, "00:49:00", itinerary.DurationText)
	assert.Equal(t, "08:00:00", itinerary.DepartureTime)
	assert.Equal(t, "08:49:00", itinerary.ArrivalTime)
	assert.Equal(t, uint64(1), itinerary.SnapshotVersion)

	require.Len(t, itinerary.Legs, 1)
	assert.Equal(t, "T", itinerary.Legs[0].TripID)
	assert.Equal(t, []string{"T"}, itinerary.Legs[0].Trips)
}

func TestPathTrips(t *testing.T) {
	path := journeygraph.Path{
		StopIDs: []string{"A1", "X1", "B1", "C1"},
		Edges: []journeygraph.Edge{
			{From: "A1", To: "X1", TripID: "T1"},
			{From: "X1", To: "B1", TripID: "T1"},
			{From: "B1", To: "C1", TripID: "T3"},
		},
	}
	assert.Equal(t, []string{"T1", "T3"}, pathTrips(path))

	assert.Empty(t, pathTrips(journeygraph.Path{StopIDs: []string{"A1"}}))
}

func TestPlanUnknownStation(t *testing.T) {
	planner := newPlanner(t, networkStops, networkStopTimes)

	_, err := planner.Plan(context.Background(), []string{"Strasbourg", "Paris Est"}, 0)

	notFoundErr := notFound(t, err)
	assert.Equal(t, ReasonUnknownStation, notFoundErr.Reason)
	assert.Equal(t, 1, notFoundErr.WaypointIndex)
	assert.Equal(t, "Paris Est", notFoundErr.Waypoint)
}

func TestPlanUnknownIntermediateStationChecksBeforeRouting(t *testing.T) {
	planner := newPlanner(t, networkStops, networkStopTimes)

	// The first leg has no departure either, but the unknown name wins
	_, err := planner.Plan(context.Background(), []string{"Saverne", "Nowhere", "Sarrebourg"}, clock(t, "23:00:00"))

	notFoundErr := notFound(t, err)
	assert.Equal(t, ReasonUnknownStation, notFoundErr.Reason)
	assert.Equal(t, 1, notFoundErr.WaypointIndex)
}

func TestPlanNoRouteForSecondLeg(t *testing.T) {
	planner := newPlanner(t, networkStops, networkStopTimes)

	itinerary, err := planner.Plan(context.Background(), []string{"Strasbourg", "Saverne", "Colmar"}, clock(t, "07:00:00"))
	assert.Nil(t, itinerary)

	notFoundErr := notFound(t, err)
	assert.Equal(t, ReasonNoRouteForLeg, notFoundErr.Reason)
	assert.Equal(t, 1, notFoundErr.LegIndex)
	assert.Equal(t, DetailUnreachable, notFoundErr.Detail)
}

func TestPlanNoDeparture(t *testing.T) {
	planner := newPlanner(t, networkStops, networkStopTimes)

	_, err := planner.Plan(context.Background(), []string{"Saverne", "Sarrebourg"}, clock(t, "09:00:00"))

	notFoundErr := notFound(t, err)
	assert.Equal(t, ReasonNoRouteForLeg, notFoundErr.Reason)
	assert.Equal(t, 0, notFoundErr.LegIndex)
	assert.Equal(t, DetailNoDeparture, notFoundErr.Detail)
}

func TestPlanPicksEarliestArrival(t *testing.T) {
	planner := newPlanner(t, networkStops, networkStopTimes)

	// A2 has the shorter hop but leaves an hour later
	itinerary, err := planner.Plan(context.Background(), []string{"Strasbourg", "Saverne"}, clock(t, "07:00:00"))
	require.NoError(t, err)
	require.Len(t, itinerary.Legs, 1)
	assert.Equal(t, "A1", itinerary.Legs[0].FromStopID)
	assert.Equal(t, "T1", itinerary.Legs[0].TripID)
	assert.Equal(t, []string{"T1"}, itinerary.Legs[0].Trips)
	assert.Equal(t, "08:30:00", itinerary.ArrivalTime)

	// Once A1 has left only A2 remains
	itinerary, err = planner.Plan(context.Background(), []string{"Strasbourg", "Saverne"}, clock(t, "08:01:00"))
	require.NoError(t, err)
	assert.Equal(t, "A2", itinerary.Legs[0].FromStopID)
	assert.Equal(t, "09:00:00", itinerary.DepartureTime)
	assert.Equal(t, "00:10:00", itinerary.DurationText)
}

func TestPlanAdvancesReferenceTime(t *testing.T) {
	planner := newPlanner(t, networkStops, networkStopTimes)

	itinerary, err := planner.Plan(context.Background(), []string{"strasbourg", "SAVERNE", "Sarrebourg"}, clock(t, "07:00:00"))
	require.NoError(t, err)
	require.Len(t, itinerary.Legs, 2)

	// T3 leaves Saverne at 08:20, before the first leg gets there
	assert.Equal(t, "08:31:00", itinerary.Legs[1].DepartureText)
	assert.GreaterOrEqual(t, itinerary.Legs[1].Departure, itinerary.Legs[0].Arrival)

	// Boarding is on T1 but the 20 minute hop priced into the leg is T3's
	assert.Equal(t, "T1", itinerary.Legs[1].TripID)
	assert.Equal(t, []string{"T3"}, itinerary.Legs[1].Trips)

	assert.Equal(t, []string{"Strasbourg", "Saverne", "Sarrebourg"}, itinerary.Stops)
	assert.Equal(t, []string{"A1", "X1", "B1"}, itinerary.StopIDs)
	assert.Equal(t, 30*60+20*60, itinerary.Duration)
	assert.Equal(t, "00:50:00", itinerary.DurationText)
	assert.Equal(t, "08:00:00", itinerary.DepartureTime)
	assert.Equal(t, "08:51:00", itinerary.ArrivalTime)
}

func TestPlanIsDeterministic(t *testing.T) {
	planner := newPlanner(t, networkStops, networkStopTimes).WithMaxGoroutines(4)
	waypoints := []string{"Strasbourg", "Saverne", "Sarrebourg"}

	expected, err := planner.Plan(context.Background(), waypoints, clock(t, "07:00:00"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			itinerary, err := planner.Plan(context.Background(), waypoints, clock(t, "07:00:00"))
			assert.NoError(t, err)
			assert.Equal(t, expected, itinerary)
		}()
	}
	wg.Wait()
}

func TestPlanContractViolations(t *testing.T) {
	planner := New(snapshot.NewManager("empty", nil))

	_, err := planner.Plan(context.Background(), []string{"A", "B"}, 0)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	planner = newPlanner(t, networkStops, networkStopTimes)
	_, err = planner.Plan(context.Background(), []string{"Strasbourg"}, 0)
	assert.ErrorIs(t, err, ErrTooFewWaypoints)
}

func TestPlanCancelledContext(t *testing.T) {
	planner := newPlanner(t, networkStops, networkStopTimes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := planner.Plan(ctx, []string{"Strasbourg", "Saverne"}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNotFoundErrorMessage(t *testing.T) {
	assert.Equal(t, `unknown station "Paris" at waypoint 2`, (&NotFoundError{Reason: ReasonUnknownStation, Waypoint: "Paris", WaypointIndex: 2}).Error())
	assert.Equal(t, "no route for leg 1 (Unreachable)", (&NotFoundError{Reason: ReasonNoRouteForLeg, LegIndex: 1, Detail: DetailUnreachable}).Error())
}
