package planner

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeFeeds(t *testing.T) string {
	bundle, err := filepath.Abs("../dataimporter/manager/testdata/bundle")
	require.NoError(t, err)

	directory := t.TempDir()
	definition := "identifier: test\nprovider:\n  name: Test Rail\nfeeds:\n  - identifier: single-trip\n    source: " + bundle + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(directory, "test.yaml"), []byte(definition), 0o644))

	return directory
}

func runCLI(t *testing.T, args ...string) (string, error) {
	var output bytes.Buffer

	app := &cli.App{
		Name:     "itinerary",
		Writer:   &output,
		Commands: []*cli.Command{RegisterCLI(), RegisterDeparturesCLI()},
	}

	err := app.Run(append([]string{"itinerary"}, args...))
	return output.String(), err
}

func TestPlanCommand(t *testing.T) {
	directory := writeFeeds(t)

	output, err := runCLI(t, "plan", "--feed", "test-single-trip", "--feeds-directory", directory, "--time", "07:00:00", "Strasbourg", "Sarrebourg")
	require.NoError(t, err)

	assert.Contains(t, output, "Strasbourg -> Saverne -> Sarrebourg\n")
	assert.Contains(t, output, "departure 08:00:00, arrival 08:49:00, duration 00:49:00\n")
	assert.Contains(t, output, "(boards T, rides T)")
}

func TestPlanCommandVerbose(t *testing.T) {
	directory := writeFeeds(t)

	output, err := runCLI(t, "plan", "--feed", "test-single-trip", "--feeds-directory", directory, "--time", "07:00:00", "--verbose", "Strasbourg", "Sarrebourg")
	require.NoError(t, err)

	assert.Contains(t, output, "Duration:")
	assert.Contains(t, output, "2940")
}

func TestPlanCommandUnknownStation(t *testing.T) {
	directory := writeFeeds(t)

	_, err := runCLI(t, "plan", "--feed", "test-single-trip", "--feeds-directory", directory, "Strasbourg", "Paris")

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, ReasonUnknownStation, notFound.Reason)
	assert.Equal(t, 1, notFound.WaypointIndex)
}

func TestPlanCommandBadTime(t *testing.T) {
	directory := writeFeeds(t)

	_, err := runCLI(t, "plan", "--feed", "test-single-trip", "--feeds-directory", directory, "--time", "8h", "Strasbourg", "Sarrebourg")
	assert.Error(t, err)
}

func TestDeparturesCommand(t *testing.T) {
	directory := writeFeeds(t)

	output, err := runCLI(t, "departures", "--feed", "test-single-trip", "--feeds-directory", directory, "--time", "08:00:00", "Saverne")
	require.NoError(t, err)

	assert.Equal(t, "08:21:00\tStopPoint:OCETrain TER-87213058\tT\tSarrebourg\n", output)
}
