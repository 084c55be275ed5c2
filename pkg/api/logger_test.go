package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	var buffer bytes.Buffer

	previous := log.Logger
	log.Logger = zerolog.New(&buffer)
	t.Cleanup(func() { log.Logger = previous })

	return &buffer
}

func requestLogLine(t *testing.T, buffer *bytes.Buffer, path string) map[string]interface{} {
	t.Helper()

	for _, line := range strings.Split(strings.TrimSpace(buffer.String()), "\n") {
		var entry map[string]interface{}
		if json.Unmarshal([]byte(line), &entry) != nil {
			continue
		}
		if entry["path"] == path {
			return entry
		}
	}

	require.Failf(t, "no request log line", "path %s in %s", path, buffer.String())
	return nil
}

func TestLoggerTagsSnapshot(t *testing.T) {
	manager := singleTripManager(t)
	buffer := captureLogs(t)

	status := get(t, manager, Options{}, plannerQuery("Strasbourg,Sarrebourg", "07:00:00"), nil)
	require.Equal(t, 200, status)

	entry := requestLogLine(t, buffer, "/core/planner")
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["feed"])
	assert.Equal(t, float64(1), entry["snapshot_version"])
	assert.Equal(t, manager.Current().Fingerprint, entry["snapshot"])
	assert.Equal(t, "Strasbourg,Sarrebourg", entry["waypoints"])
	assert.NotEmpty(t, entry["query_id"])
}

func TestLoggerUnknownRoute(t *testing.T) {
	manager := singleTripManager(t)
	buffer := captureLogs(t)

	status := get(t, manager, Options{}, "/core/timetables", nil)
	assert.Equal(t, 404, status)

	entry := requestLogLine(t, buffer, "/core/timetables")
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(404), entry["status"])
	assert.NotContains(t, entry, "query_id")
}
