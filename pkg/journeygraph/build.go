package journeygraph

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/timetable"
)

type BuildReport struct {
	Trips int

	ForwardEdges       int
	ReverseEdges       int
	ApproximateReverse int

	// DroppedPairs counts consecutive stop pairs with missing or negative times.
	DroppedPairs int
}

func (r BuildReport) MarshalZerologObject(e *zerolog.Event) {
	e.Int("trips", r.Trips).
		Int("forward", r.ForwardEdges).
		Int("reverse", r.ReverseEdges).
		Int("approximate", r.ApproximateReverse).
		Int("dropped", r.DroppedPairs)
}

// Build turns every trip's ordered stop list into graph edges. The forward
// edge of a pair is arrival(next) - departure(current). The reverse edge is
// arrival(current) - departure(next) when both are published, or a copy of
// the forward duration marked Approximate when they are not.
func Build(trips *timetable.Trips) (*Graph, BuildReport) {
	startTime := time.Now()

	graph := NewGraph()
	report := BuildReport{}

	for _, tripID := range trips.IDs() {
		stops := trips.Stops(tripID)
		report.Trips++

		for i := 0; i+1 < len(stops); i++ {
			current := stops[i]
			next := stops[i+1]

			if current.Departure == nil || next.Arrival == nil {
				report.DroppedPairs++
				continue
			}

			forward := Edge{
				From:     current.StopID,
				To:       next.StopID,
				Duration: int(*next.Arrival - *current.Departure),
				TripID:   tripID,
			}
			if !graph.AddEdge(forward) {
				report.DroppedPairs++
				continue
			}
			report.ForwardEdges++

			reverse := Edge{
				From:   next.StopID,
				To:     current.StopID,
				TripID: tripID,
			}
			if current.Arrival != nil && next.Departure != nil {
				reverse.Duration = int(*current.Arrival - *next.Departure)
			} else {
				reverse.Duration = forward.Duration
				reverse.Approximate = true
			}

			if graph.AddEdge(reverse) {
				report.ReverseEdges++
				if reverse.Approximate {
					report.ApproximateReverse++
				}
			}
		}
	}

	log.Info().
		Object("graph", report).
		Int("nodes", len(graph.Nodes())).
		Str("duration", time.Since(startTime).String()).
		Msg("Built journey graph")

	return graph, report
}
