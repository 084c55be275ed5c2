package export

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/timetable/timetabletest"
)

const stops = `stop_id,stop_name,stop_lat,stop_lon
S1,Strasbourg,48.585,7.734
S2,Saverne,,
S3,Sarrebourg,48.733,7.051
`

func TestRecords(t *testing.T) {
	table := timetabletest.Load(t, stops, timetabletest.SingleTripStopTimes)
	snap := snapshot.Build("test", table, snapshot.NameMatchExact)

	stopRecords := StopRecords(snap)
	require.Len(t, stopRecords, 3)
	assert.Equal(t, "Strasbourg", stopRecords[0]["name"])
	assert.Equal(t, 48.585, stopRecords[0]["latitude"])
	assert.Nil(t, stopRecords[1]["latitude"])

	edgeRecords := EdgeRecords(snap)
	require.Len(t, edgeRecords, 4)
	assert.Equal(t, "S1", edgeRecords[0]["from"])
	assert.Equal(t, 1200, edgeRecords[0]["duration"])
	assert.Equal(t, false, edgeRecords[0]["approximate"])
}

func TestBatches(t *testing.T) {
	records := make([]map[string]any, batchSize*2+1)

	out := batches(records)
	require.Len(t, out, 3)
	assert.Len(t, out[0], batchSize)
	assert.Len(t, out[2], 1)

	assert.Empty(t, batches(nil))
}

func TestExport(t *testing.T) {
	if os.Getenv("TRAVIGO_NEO4J_URL") == "" {
		t.Skip("TRAVIGO_NEO4J_URL not set")
	}

	config, err := ConfigFromEnvironment()
	require.NoError(t, err)

	ctx := context.Background()
	driver, err := Connect(ctx, config)
	require.NoError(t, err)
	defer driver.Close(ctx)

	table := timetabletest.Load(t, stops, timetabletest.SingleTripStopTimes)
	snap := snapshot.Build(fmt.Sprintf("test-%s", t.Name()), table, snapshot.NameMatchExact)

	assert.NoError(t, Export(ctx, driver, config.Database, snap))
}
