package departureboard

import (
	"cmp"
	"sort"

	"github.com/travigo/itinerary/pkg/timetable"
	"golang.org/x/exp/slices"
)

// Departure is a boardable scheduled departure from a stop.
type Departure struct {
	TripID   string
	StopID   string
	Sequence int

	Time    timetable.Clock
	Arrival *timetable.Clock

	// DestinationStopID is the last stop of the trip.
	DestinationStopID string

	row int
}

// Board indexes every valid departure per stop, ordered by departure time and
// then by file order.
type Board struct {
	departures map[string][]Departure
}

// New builds a Board from the trip index. Rows with no departure time, rows
// that allow neither pickup nor drop-off and rows departing before they
// arrive are left out.
func New(trips *timetable.Trips) *Board {
	board := &Board{
		departures: map[string][]Departure{},
	}

	for _, tripID := range trips.IDs() {
		stops := trips.Stops(tripID)
		if len(stops) == 0 {
			continue
		}
		destination := stops[len(stops)-1].StopID

		for _, stop := range stops {
			if !departs(stop) {
				continue
			}

			board.departures[stop.StopID] = append(board.departures[stop.StopID], Departure{
				TripID:            stop.TripID,
				StopID:            stop.StopID,
				Sequence:          stop.Sequence,
				Time:              *stop.Departure,
				Arrival:           stop.Arrival,
				DestinationStopID: destination,
				row:               stop.Row,
			})
		}
	}

	for _, departures := range board.departures {
		slices.SortStableFunc(departures, func(a, b Departure) int {
			if a.Time != b.Time {
				return cmp.Compare(a.Time, b.Time)
			}
			return cmp.Compare(a.row, b.row)
		})
	}

	return board
}

func departs(stop timetable.TripStop) bool {
	if stop.Departure == nil {
		return false
	}
	if !stop.Boardable() {
		return false
	}
	if stop.Arrival != nil && *stop.Departure < *stop.Arrival {
		return false
	}

	return true
}

// NextDeparture returns the earliest departure at or after ref. found is
// false once the stop has no more departures for the day.
func (b *Board) NextDeparture(stopID string, ref timetable.Clock) (Departure, bool) {
	departures := b.NextDepartures(stopID, ref, 1)
	if len(departures) == 0 {
		return Departure{}, false
	}

	return departures[0], true
}

// NextDepartures returns up to count departures at or after ref.
func (b *Board) NextDepartures(stopID string, ref timetable.Clock, count int) []Departure {
	departures := b.departures[stopID]

	start := sort.Search(len(departures), func(i int) bool {
		return departures[i].Time >= ref
	})

	end := len(departures)
	if count >= 0 && start+count < end {
		end = start + count
	}

	return departures[start:end]
}

// Len returns the number of departures indexed for a stop.
func (b *Board) Len(stopID string) int {
	return len(b.departures[stopID])
}
