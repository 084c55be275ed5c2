package planner

import (
	"errors"
	"fmt"
)

var (
	ErrNoSnapshot      = errors.New("no timetable snapshot loaded")
	ErrTooFewWaypoints = errors.New("an itinerary needs a departure and an arrival")
)

type Reason string

const (
	ReasonUnknownStation Reason = "UnknownStation"
	ReasonNoRouteForLeg  Reason = "NoRouteForLeg"
)

// Detail tells apart the two ways a leg can fail.
type Detail string

const (
	DetailNoDeparture Detail = "NoDeparture"
	DetailUnreachable Detail = "Unreachable"
)

// NotFoundError is the negative planner result. Callers detect it with errors.As.
type NotFoundError struct {
	Reason Reason

	// WaypointIndex and Waypoint are set for ReasonUnknownStation.
	WaypointIndex int
	Waypoint      string

	// LegIndex is zero based and set for ReasonNoRouteForLeg.
	LegIndex int
	Detail   Detail
}

func (e *NotFoundError) Error() string {
	switch e.Reason {
	case ReasonUnknownStation:
		return fmt.Sprintf("unknown station %q at waypoint %d", e.Waypoint, e.WaypointIndex)
	case ReasonNoRouteForLeg:
		return fmt.Sprintf("no route for leg %d (%s)", e.LegIndex, e.Detail)
	}

	return string(e.Reason)
}
