package planner

import "github.com/travigo/itinerary/pkg/timetable"

type Itinerary struct {
	FeedID          string `groups:"detailed"`
	SnapshotVersion uint64 `groups:"detailed"`

	Stops   []string `groups:"basic,detailed"`
	StopIDs []string `groups:"detailed"`

	// Duration is the sum of leg travel times in seconds, waits excluded.
	Duration      int    `groups:"detailed"`
	DurationText  string `groups:"basic,detailed"`
	DepartureTime string `groups:"basic,detailed"`
	ArrivalTime   string `groups:"basic,detailed"`

	Legs []Leg `groups:"detailed"`
}

type Leg struct {
	Index int `groups:"detailed"`

	From string `groups:"detailed"`
	To   string `groups:"detailed"`

	FromStopID string `groups:"detailed"`
	ToStopID   string `groups:"detailed"`

	// TripID is the departure picked from the board at FromStopID. The
	// duration comes from the fastest hops in the graph, which may belong to
	// other trips; Trips lists those in ride order.
	TripID string   `groups:"detailed"`
	Trips  []string `groups:"detailed"`

	Departure     timetable.Clock `groups:"detailed"`
	DepartureText string          `groups:"detailed"`
	Arrival       timetable.Clock `groups:"detailed"`
	ArrivalText   string          `groups:"detailed"`
	Duration      int             `groups:"detailed"`

	Stops   []string `groups:"detailed"`
	StopIDs []string `groups:"detailed"`
}
