package timetable

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

const (
	DefaultStopsFile     = "stops.txt"
	DefaultStopTimesFile = "stop_times.txt"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func init() {
	// Let short rows through to per-row validation instead of failing the whole table
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		return r
	})
}

type LoadOptions struct {
	StopsFile     string
	StopTimesFile string

	Filter *StopFilter
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.StopsFile == "" {
		o.StopsFile = DefaultStopsFile
	}
	if o.StopTimesFile == "" {
		o.StopTimesFile = DefaultStopTimesFile
	}

	return o
}

// Load reads the stops and stop times tables out of a feed bundle.
func Load(fsys fs.FS, options LoadOptions) (*Timetable, error) {
	options = options.withDefaults()

	stopsReader, err := openTable(fsys, options.StopsFile)
	if err != nil {
		return nil, err
	}
	defer stopsReader.Close()

	stopTimesReader, err := openTable(fsys, options.StopTimesFile)
	if err != nil {
		return nil, err
	}
	defer stopTimesReader.Close()

	return Read(stopsReader, stopTimesReader, options)
}

// Read parses already opened stops and stop times tables. The returned
// timetable's Fingerprint hashes both table bodies and the stop filter, so
// equal fingerprints mean equal routable content.
func Read(stopsReader io.Reader, stopTimesReader io.Reader, options LoadOptions) (*Timetable, error) {
	startTime := time.Now()
	options = options.withDefaults()

	digest := xxhash.New()
	options.Filter.writeFingerprint(digest)

	stops, stopsReport, err := ParseStops(io.TeeReader(stopsReader, digest), options.Filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", options.StopsFile, err)
	}
	stopsReport.File = options.StopsFile

	// Separates the two bodies so moving bytes between tables changes the hash
	digest.Write([]byte{0})

	trips, stopTimesReport, err := ParseStopTimes(io.TeeReader(stopTimesReader, digest))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", options.StopTimesFile, err)
	}
	stopTimesReport.File = options.StopTimesFile

	fingerprint := fmt.Sprintf("%016x", digest.Sum64())

	log.Info().
		Object("stops", stopsReport).
		Object("stop_times", stopTimesReport).
		Int("trips", trips.Len()).
		Str("fingerprint", fingerprint).
		Str("duration", time.Since(startTime).String()).
		Msg("Loaded timetable")

	return &Timetable{
		Stops:       stops,
		Trips:       trips,
		Reports:     []LoadReport{stopsReport, stopTimesReport},
		Fingerprint: fingerprint,
	}, nil
}

func openTable(fsys fs.FS, name string) (fs.File, error) {
	file, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: table %s not found", ErrMalformedFeed, name)
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

// readTable buffers a table and checks its header carries every required column.
func readTable(reader io.Reader, required []string) ([]byte, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimPrefix(body, utf8BOM)

	header, err := csv.NewReader(bytes.NewReader(body)).Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty table", ErrMalformedFeed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %s", ErrMalformedFeed, err)
	}

	columns := map[string]bool{}
	for _, column := range header {
		columns[column] = true
	}

	var missing []string
	for _, column := range required {
		if !columns[column] {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns %s", ErrMalformedFeed, strings.Join(missing, ", "))
	}

	return body, nil
}

// ParseStops reads stops.txt, keeping the stops the filter accepts. A nil
// filter keeps every row.
func ParseStops(reader io.Reader, filter *StopFilter) (*Stops, LoadReport, error) {
	report := newLoadReport(DefaultStopsFile)

	body, err := readTable(reader, stopsRequiredColumns)
	if err != nil {
		return nil, report, err
	}

	stops := NewStops()

	err = gocsv.UnmarshalToCallback(bytes.NewReader(body), func(record StopRecord) {
		report.Rows++
		row := report.Rows + 1

		stopID := strings.TrimSpace(record.ID)
		if stopID == "" {
			skipRow(&report, row, SkipMissingStopID, nil)
			return
		}

		if filter != nil && filter.IsArea(stopID) {
			report.Filtered[SkipStopArea]++
			return
		}

		keep, err := filter.Keep(stopID, record.Name)
		if err != nil {
			log.Warn().Err(err).Str("stop", stopID).Msg("Stop filter failed")
		}
		if !keep {
			report.Filtered[SkipNotRoutable]++
			return
		}

		if strings.TrimSpace(record.Name) == "" {
			skipRow(&report, row, SkipMissingStopName, nil)
			return
		}

		stop := &Stop{
			ID:   stopID,
			Name: strings.TrimSpace(record.Name),
		}

		latitude, latErr := strconv.ParseFloat(strings.TrimSpace(record.Latitude), 64)
		longitude, lonErr := strconv.ParseFloat(strings.TrimSpace(record.Longitude), 64)
		if latErr == nil && lonErr == nil {
			stop.Latitude = &latitude
			stop.Longitude = &longitude
		}

		if !stops.add(stop) {
			skipRow(&report, row, SkipDuplicateStop, nil)
			return
		}

		report.Loaded++
	})
	if err != nil {
		return nil, report, fmt.Errorf("%w: %s", ErrMalformedFeed, err)
	}

	return stops, report, nil
}

// ParseStopTimes reads stop_times.txt into per-trip stop lists sorted by
// sequence. Rows sharing a sequence keep their file order.
func ParseStopTimes(reader io.Reader) (*Trips, LoadReport, error) {
	report := newLoadReport(DefaultStopTimesFile)

	body, err := readTable(reader, stopTimesRequiredColumns)
	if err != nil {
		return nil, report, err
	}

	trips := NewTrips()

	err = gocsv.UnmarshalToCallback(bytes.NewReader(body), func(record StopTimeRecord) {
		report.Rows++
		row := report.Rows + 1

		tripStop, reason, err := parseStopTimeRecord(record, row)
		if reason != "" {
			skipRow(&report, row, reason, err)
			return
		}

		trips.add(tripStop)
		report.Loaded++
	})
	if err != nil {
		return nil, report, fmt.Errorf("%w: %s", ErrMalformedFeed, err)
	}

	for _, tripID := range trips.order {
		slices.SortStableFunc(trips.stops[tripID], func(a, b TripStop) int {
			return cmp.Compare(a.Sequence, b.Sequence)
		})
	}

	return trips, report, nil
}

func parseStopTimeRecord(record StopTimeRecord, row int) (TripStop, string, error) {
	tripStop := TripStop{
		TripID: strings.TrimSpace(record.TripID),
		StopID: strings.TrimSpace(record.StopID),
		Row:    row,
	}

	if tripStop.TripID == "" {
		return tripStop, SkipMissingTripID, nil
	}
	if tripStop.StopID == "" {
		return tripStop, SkipMissingStopID, nil
	}

	sequence, err := strconv.Atoi(strings.TrimSpace(record.StopSequence))
	if err != nil {
		return tripStop, SkipInvalidSequence, err
	}
	tripStop.Sequence = sequence

	arrival, hasArrival, err := ParseClock(record.ArrivalTime)
	if err != nil {
		return tripStop, SkipInvalidTime, err
	}
	if hasArrival {
		tripStop.Arrival = &arrival
	}

	departure, hasDeparture, err := ParseClock(record.DepartureTime)
	if err != nil {
		return tripStop, SkipInvalidTime, err
	}
	if hasDeparture {
		tripStop.Departure = &departure
	}

	if tripStop.PickupType, err = parseBoardingFlag(record.PickupType); err != nil {
		return tripStop, SkipInvalidBoardingFlag, err
	}
	if tripStop.DropOffType, err = parseBoardingFlag(record.DropOffType); err != nil {
		return tripStop, SkipInvalidBoardingFlag, err
	}

	return tripStop, "", nil
}

// parseBoardingFlag treats an empty pickup_type/drop_off_type as 0 (regular).
func parseBoardingFlag(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	return strconv.Atoi(value)
}

func skipRow(report *LoadReport, row int, reason string, err error) {
	report.Skipped[reason]++

	log.Warn().
		Err(err).
		Str("file", report.File).
		Int("row", row).
		Str("reason", reason).
		Msg("Skipping malformed row")
}
