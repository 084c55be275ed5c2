package planner

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/itinerary/pkg/departureboard"
	"github.com/travigo/itinerary/pkg/journeygraph"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/timetable"
)

const defaultMaxGoroutines = 16

// Source hands out the snapshot a plan runs against.
type Source interface {
	Current() *snapshot.Snapshot
}

type Planner struct {
	source        Source
	maxGoroutines int
}

func New(source Source) *Planner {
	return &Planner{
		source:        source,
		maxGoroutines: defaultMaxGoroutines,
	}
}

func (p *Planner) WithMaxGoroutines(n int) *Planner {
	if n > 0 {
		p.maxGoroutines = n
	}
	return p
}

// Plan computes the earliest-arriving itinerary through the waypoints,
// leaving no earlier than ref. The snapshot is read once so a concurrent
// refresh does not affect a plan in progress.
func (p *Planner) Plan(ctx context.Context, waypoints []string, ref timetable.Clock) (*Itinerary, error) {
	return p.PlanWithSnapshot(ctx, p.source.Current(), waypoints, ref)
}

func (p *Planner) PlanWithSnapshot(ctx context.Context, snap *snapshot.Snapshot, waypoints []string, ref timetable.Clock) (*Itinerary, error) {
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	if len(waypoints) < 2 {
		return nil, ErrTooFewWaypoints
	}

	candidates := make([][]string, len(waypoints))
	for i, waypoint := range waypoints {
		candidates[i] = snap.Resolve(waypoint)
		if len(candidates[i]) == 0 {
			return nil, &NotFoundError{
				Reason:        ReasonUnknownStation,
				WaypointIndex: i,
				Waypoint:      waypoint,
				LegIndex:      -1,
			}
		}
	}

	itinerary := &Itinerary{
		FeedID:          snap.FeedID,
		SnapshotVersion: snap.Version,
	}

	current := ref
	for legIndex := 0; legIndex+1 < len(waypoints); legIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best, detail, found := p.evaluateLeg(snap, candidates[legIndex], candidates[legIndex+1], current)
		if !found {
			log.Debug().
				Int("leg", legIndex).
				Str("from", waypoints[legIndex]).
				Str("to", waypoints[legIndex+1]).
				Str("detail", string(detail)).
				Msg("No route for leg")

			return nil, &NotFoundError{
				Reason:        ReasonNoRouteForLeg,
				LegIndex:      legIndex,
				WaypointIndex: -1,
				Detail:        detail,
			}
		}

		leg := best.leg(snap, legIndex, waypoints[legIndex], waypoints[legIndex+1])
		itinerary.appendLeg(leg)

		current = leg.Arrival
	}

	first := itinerary.Legs[0]
	last := itinerary.Legs[len(itinerary.Legs)-1]

	itinerary.DurationText = timetable.FormatDuration(itinerary.Duration)
	itinerary.DepartureTime = first.DepartureText
	itinerary.ArrivalTime = last.ArrivalText

	return itinerary, nil
}

type legOption struct {
	index int

	startID string
	endID   string

	departure    departureboard.Departure
	hasDeparture bool

	path  journeygraph.Path
	found bool
}

func (o legOption) arrival() timetable.Clock {
	return o.departure.Time + timetable.Clock(o.path.Duration)
}

func (o legOption) usable() bool {
	return o.hasDeparture && o.found
}

// evaluateLeg tries every start and end candidate pair and keeps the one
// arriving first. Equal arrivals go to the pair enumerated first.
func (p *Planner) evaluateLeg(snap *snapshot.Snapshot, starts []string, ends []string, ref timetable.Clock) (legOption, Detail, bool) {
	workers := pool.NewWithResults[legOption]().WithMaxGoroutines(p.maxGoroutines)

	index := 0
	for _, startID := range starts {
		for _, endID := range ends {
			option := legOption{index: index, startID: startID, endID: endID}
			index++

			workers.Go(func() legOption {
				option.departure, option.hasDeparture = snap.Board.NextDeparture(option.startID, ref)
				if !option.hasDeparture {
					return option
				}

				option.path, option.found = snap.Graph.ShortestPath(option.startID, option.endID)
				return option
			})
		}
	}

	var best legOption
	bestFound := false
	anyDeparture := false

	for _, option := range workers.Wait() {
		anyDeparture = anyDeparture || option.hasDeparture
		if !option.usable() {
			continue
		}

		if !bestFound ||
			option.arrival() < best.arrival() ||
			(option.arrival() == best.arrival() && option.index < best.index) {
			best = option
			bestFound = true
		}
	}

	if bestFound {
		return best, "", true
	}
	if anyDeparture {
		return legOption{}, DetailUnreachable, false
	}
	return legOption{}, DetailNoDeparture, false
}

func (o legOption) leg(snap *snapshot.Snapshot, index int, from string, to string) Leg {
	leg := Leg{
		Index:         index,
		From:          from,
		To:            to,
		FromStopID:    o.startID,
		ToStopID:      o.endID,
		TripID:        o.departure.TripID,
		Departure:     o.departure.Time,
		DepartureText: timetable.FormatClock(o.departure.Time),
		Arrival:       o.arrival(),
		ArrivalText:   timetable.FormatClock(o.arrival()),
		Duration:      o.path.Duration,
		StopIDs:       o.path.StopIDs,
		Trips:         pathTrips(o.path),
	}

	leg.Stops = make([]string, len(o.path.StopIDs))
	for i, stopID := range o.path.StopIDs {
		leg.Stops[i] = snap.StopName(stopID)
	}

	return leg
}

// pathTrips lists the trips whose hops make up path, collapsing consecutive
// hops on the same trip.
func pathTrips(path journeygraph.Path) []string {
	trips := []string{}
	for _, edge := range path.Edges {
		if len(trips) == 0 || trips[len(trips)-1] != edge.TripID {
			trips = append(trips, edge.TripID)
		}
	}

	return trips
}

// appendLeg adds a leg to the flat path, dropping its first stop when it
// names the same station the previous leg ended at.
func (i *Itinerary) appendLeg(leg Leg) {
	stops := leg.Stops
	stopIDs := leg.StopIDs

	if len(i.Stops) > 0 && len(stops) > 0 &&
		strings.EqualFold(i.Stops[len(i.Stops)-1], stops[0]) {
		stops = stops[1:]
		stopIDs = stopIDs[1:]
	}

	i.Stops = append(i.Stops, stops...)
	i.StopIDs = append(i.StopIDs, stopIDs...)
	i.Duration += leg.Duration
	i.Legs = append(i.Legs, leg)
}
