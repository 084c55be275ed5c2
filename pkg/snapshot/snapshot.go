package snapshot

import (
	"time"

	"github.com/travigo/itinerary/pkg/departureboard"
	"github.com/travigo/itinerary/pkg/journeygraph"
	"github.com/travigo/itinerary/pkg/timetable"
)

type NameMatch string

const (
	NameMatchExact    NameMatch = "exact"
	NameMatchContains NameMatch = "contains"
)

// Snapshot is an immutable view of one loaded feed. Everything reachable
// from it is read-only, so any number of searches may share it.
type Snapshot struct {
	FeedID    string
	Version   uint64
	LoadedAt  time.Time
	NameMatch NameMatch

	// Fingerprint identifies the routable content. Servers loading the same
	// tables with the same name matching share it, whatever their Version.
	Fingerprint string

	Stops *timetable.Stops
	Graph *journeygraph.Graph
	Board *departureboard.Board

	Reports     []timetable.LoadReport
	GraphReport journeygraph.BuildReport
}

// Build derives the graph and departure board from a loaded timetable.
func Build(feedID string, table *timetable.Timetable, nameMatch NameMatch) *Snapshot {
	if nameMatch == "" {
		nameMatch = NameMatchExact
	}

	graph, graphReport := journeygraph.Build(table.Trips)

	return &Snapshot{
		FeedID:      feedID,
		LoadedAt:    time.Now(),
		NameMatch:   nameMatch,
		Fingerprint: table.Fingerprint + "-" + string(nameMatch),
		Stops:       table.Stops,
		Graph:       graph,
		Board:       departureboard.New(table.Trips),
		Reports:     table.Reports,
		GraphReport: graphReport,
	}
}

// Resolve returns the stop ids a waypoint name refers to, in load order.
func (s *Snapshot) Resolve(name string) []string {
	if s.NameMatch == NameMatchContains {
		return s.Stops.MatchContaining(name)
	}

	return s.Stops.Names().Lookup(name)
}

// StopName falls back to the id for stops that were filtered out of the stop set.
func (s *Snapshot) StopName(stopID string) string {
	if stop, ok := s.Stops.Get(stopID); ok {
		return stop.Name
	}

	return stopID
}
