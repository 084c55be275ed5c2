package timetable

import "strings"

// StopRecord is one row of stops.txt.
type StopRecord struct {
	ID        string `csv:"stop_id"`
	Name      string `csv:"stop_name"`
	Latitude  string `csv:"stop_lat"`
	Longitude string `csv:"stop_lon"`
}

// StopTimeRecord is one row of stop_times.txt. Everything is kept as text so
// that a bad value only costs its own row.
type StopTimeRecord struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	StopSequence  string `csv:"stop_sequence"`
	PickupType    string `csv:"pickup_type"`
	DropOffType   string `csv:"drop_off_type"`
}

var (
	stopsRequiredColumns     = []string{"stop_id", "stop_name"}
	stopTimesRequiredColumns = []string{"trip_id", "stop_id", "stop_sequence", "arrival_time", "departure_time"}
)

type Stop struct {
	ID        string
	Name      string
	Latitude  *float64
	Longitude *float64
}

// TripStop is a validated stop_times row.
type TripStop struct {
	TripID   string
	StopID   string
	Sequence int

	Arrival   *Clock
	Departure *Clock

	PickupType  int
	DropOffType int

	// Row is the position in the source file, used to keep ordering stable.
	Row int
}

// Boardable is false when the row disallows both pickup and drop-off.
func (t TripStop) Boardable() bool {
	return !(t.PickupType == 1 && t.DropOffType == 1)
}

// NormaliseName is the key used by the NameIndex.
func NormaliseName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NameIndex maps a normalised stop name to every stop id carrying it, in load order.
type NameIndex map[string][]string

func (n NameIndex) Lookup(name string) []string {
	return n[NormaliseName(name)]
}

// Stops is the retained routable stop set plus its NameIndex.
type Stops struct {
	byID  map[string]*Stop
	order []string
	names NameIndex
}

func NewStops() *Stops {
	return &Stops{
		byID:  map[string]*Stop{},
		names: NameIndex{},
	}
}

func (s *Stops) add(stop *Stop) bool {
	if _, exists := s.byID[stop.ID]; exists {
		return false
	}

	s.byID[stop.ID] = stop
	s.order = append(s.order, stop.ID)

	key := NormaliseName(stop.Name)
	s.names[key] = append(s.names[key], stop.ID)

	return true
}

func (s *Stops) Get(id string) (*Stop, bool) {
	stop, ok := s.byID[id]
	return stop, ok
}

func (s *Stops) Len() int {
	return len(s.order)
}

// IDs returns stop ids in load order.
func (s *Stops) IDs() []string {
	return s.order
}

func (s *Stops) Names() NameIndex {
	return s.names
}

// MatchContaining returns ids of every stop whose normalised name contains fragment, in load order.
func (s *Stops) MatchContaining(fragment string) []string {
	fragment = NormaliseName(fragment)
	if fragment == "" {
		return nil
	}

	var ids []string
	for _, id := range s.order {
		if strings.Contains(NormaliseName(s.byID[id].Name), fragment) {
			ids = append(ids, id)
		}
	}

	return ids
}

// Trips groups TripStops per trip, ordered by stop sequence. Trips are kept in
// order of first appearance in the feed.
type Trips struct {
	order []string
	stops map[string][]TripStop
}

func NewTrips() *Trips {
	return &Trips{
		stops: map[string][]TripStop{},
	}
}

func (t *Trips) add(stop TripStop) {
	if _, exists := t.stops[stop.TripID]; !exists {
		t.order = append(t.order, stop.TripID)
	}
	t.stops[stop.TripID] = append(t.stops[stop.TripID], stop)
}

func (t *Trips) IDs() []string {
	return t.order
}

func (t *Trips) Stops(tripID string) []TripStop {
	return t.stops[tripID]
}

func (t *Trips) Len() int {
	return len(t.order)
}

// Timetable is the output of a feed load.
type Timetable struct {
	Stops   *Stops
	Trips   *Trips
	Reports []LoadReport

	Fingerprint string
}
