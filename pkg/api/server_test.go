package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/itinerary/pkg/cachedresults"
	"github.com/travigo/itinerary/pkg/planner"
	"github.com/travigo/itinerary/pkg/redis_client"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/timetable/timetabletest"
)

func singleTripManager(t *testing.T) *snapshot.Manager {
	table := timetabletest.Load(t, timetabletest.SingleTripStops, timetabletest.SingleTripStopTimes)

	manager := snapshot.NewManager("test", func(ctx context.Context) (*snapshot.Snapshot, error) {
		return snapshot.Build("test", table, snapshot.NameMatchExact), nil
	})
	t.Cleanup(manager.Shutdown)

	_, err := manager.Reload(context.Background())
	require.NoError(t, err)

	return manager
}

func get(t *testing.T, manager *snapshot.Manager, options Options, target string, response interface{}) int {
	t.Helper()

	resp, err := NewApp(manager, options).Test(httptest.NewRequest("GET", target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if response != nil {
		require.NoError(t, json.Unmarshal(body, response), string(body))
	}

	return resp.StatusCode
}

func plannerQuery(waypoints string, time string) string {
	query := url.Values{}
	query.Set("waypoints", waypoints)
	query.Set("time", time)
	return "/core/planner?" + query.Encode()
}

func TestPlannerRoute(t *testing.T) {
	manager := singleTripManager(t)

	var itinerary map[string]interface{}
	status := get(t, manager, Options{}, plannerQuery("Strasbourg,Sarrebourg", "07:00:00"), &itinerary)

	assert.Equal(t, 200, status)
	assert.Equal(t, map[string]interface{}{
		"Stops":         []interface{}{"Strasbourg", "Saverne", "Sarrebourg"},
		"DurationText":  "00:49:00",
		"DepartureTime": "08:00:00",
		"ArrivalTime":   "08:49:00",
	}, itinerary)
}

func TestPlannerRouteDetailed(t *testing.T) {
	manager := singleTripManager(t)

	var itinerary planner.Itinerary
	status := get(t, manager, Options{}, plannerQuery("Strasbourg,Sarrebourg", "07:00:00")+"&detailed=true", &itinerary)

	assert.Equal(t, 200, status)
	assert.Equal(t, "test", itinerary.FeedID)
	assert.Equal(t, uint64(1), itinerary.SnapshotVersion)
	assert.Equal(t, 2940, itinerary.Duration)
	assert.Equal(t, []string{"S1", "S2", "S3"}, itinerary.StopIDs)
	require.Len(t, itinerary.Legs, 1)
	assert.Equal(t, "T", itinerary.Legs[0].TripID)
}

func TestPlannerRouteErrors(t *testing.T) {
	manager := singleTripManager(t)

	tests := []struct {
		name     string
		target   string
		status   int
		response map[string]interface{}
	}{
		{
			name:   "unknown station",
			target: plannerQuery("Strasbourg,Paris", "07:00:00"),
			status: 404,
			response: map[string]interface{}{
				"error":          `unknown station "Paris" at waypoint 1`,
				"reason":         "UnknownStation",
				"waypoint_index": float64(1),
				"waypoint":       "Paris",
			},
		},
		{
			name:   "no departure",
			target: plannerQuery("Sarrebourg,Strasbourg", "07:00:00"),
			status: 404,
			response: map[string]interface{}{
				"error":     "no route for leg 0 (NoDeparture)",
				"reason":    "NoRouteForLeg",
				"leg_index": float64(0),
				"detail":    "NoDeparture",
			},
		},
		{
			name:   "single waypoint",
			target: plannerQuery("Strasbourg", "07:00:00"),
			status: 400,
			response: map[string]interface{}{
				"error": "Parameter waypoints should list at least 2 stations",
			},
		},
		{
			name:   "bad time",
			target: plannerQuery("Strasbourg,Sarrebourg", "seven"),
			status: 400,
			response: map[string]interface{}{
				"error": "Parameter time should be formatted as HH:MM:SS",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var response map[string]interface{}
			status := get(t, manager, Options{}, test.target, &response)

			assert.Equal(t, test.status, status)
			assert.Equal(t, test.response, response)
		})
	}
}

func TestPlannerRouteWithoutSnapshot(t *testing.T) {
	manager := snapshot.NewManager("test", nil)
	defer manager.Shutdown()

	status := get(t, manager, Options{}, plannerQuery("Strasbourg,Sarrebourg", "07:00:00"), nil)
	assert.Equal(t, 503, status)
}

func TestPlannerRouteCache(t *testing.T) {
	redisServer := miniredis.RunT(t)
	require.NoError(t, redis_client.ConnectWithClient(redis.NewClient(&redis.Options{Addr: redisServer.Addr()})))

	resultCache := &cachedresults.Cache{}
	resultCache.Setup()

	manager := singleTripManager(t)
	target := plannerQuery("Strasbourg,Sarrebourg", "07:00:00")

	status := get(t, manager, Options{ResultCache: resultCache}, target, nil)
	require.Equal(t, 200, status)

	key := "cachedresults/itinerary/test/" + manager.Current().Fingerprint + "/25200/strasbourg|sarrebourg"
	require.True(t, redisServer.Exists(key), redisServer.Keys())

	cached := &planner.Itinerary{
		Stops:        []string{"Strasbourg", "Sarrebourg"},
		DurationText: "00:01:00",
	}
	require.NoError(t, resultCache.SetItinerary(context.Background(), key, cached))

	var itinerary map[string]interface{}
	status = get(t, manager, Options{ResultCache: resultCache}, target, &itinerary)
	assert.Equal(t, 200, status)
	assert.Equal(t, "00:01:00", itinerary["DurationText"])
}

func TestStopDeparturesRoute(t *testing.T) {
	manager := singleTripManager(t)

	var departures []map[string]interface{}
	status := get(t, manager, Options{}, "/core/stops/Saverne/departures?time=08:00:00", &departures)

	assert.Equal(t, 200, status)
	assert.Equal(t, []map[string]interface{}{
		{
			"Time":        "08:21:00",
			"Stop":        "Saverne",
			"TripID":      "T",
			"Destination": "Sarrebourg",
		},
	}, departures)

	status = get(t, manager, Options{}, "/core/stops/Saverne/departures?time=08:21:01", &departures)
	assert.Equal(t, 200, status)
	assert.Empty(t, departures)

	status = get(t, manager, Options{}, "/core/stops/Saverne/departures?count=none", nil)
	assert.Equal(t, 400, status)

	status = get(t, manager, Options{}, "/core/stops/Paris/departures", nil)
	assert.Equal(t, 404, status)
}

func TestStopsRoute(t *testing.T) {
	manager := singleTripManager(t)

	var stops []map[string]interface{}
	status := get(t, manager, Options{}, "/core/stops/saverne", &stops)

	assert.Equal(t, 200, status)
	assert.Equal(t, []map[string]interface{}{
		{"ID": "S2", "Name": "Saverne"},
	}, stops)
}

func TestVersionRoute(t *testing.T) {
	manager := singleTripManager(t)

	var version map[string]interface{}
	status := get(t, manager, Options{}, "/core/version", &version)

	assert.Equal(t, 200, status)
	assert.Equal(t, "v1.0", version["version"])
	assert.Equal(t, "test", version["feed"])
	assert.Equal(t, float64(1), version["snapshot_version"])
}

func TestPlannerRouteQueryIdentifier(t *testing.T) {
	manager := singleTripManager(t)

	resp, err := NewApp(manager, Options{}).Test(httptest.NewRequest("GET", plannerQuery("Strasbourg,Sarrebourg", "07:00:00"), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Len(t, resp.Header.Get("X-Itinerary-Query"), 36)
}
