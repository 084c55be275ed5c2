package routes

import (
	"cmp"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/itinerary/pkg/departureboard"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/timetable"
	"golang.org/x/exp/slices"
)

const defaultDepartureCount = 10

type stop struct {
	ID        string   `groups:"basic,detailed"`
	Name      string   `groups:"basic,detailed"`
	Latitude  *float64 `groups:"detailed"`
	Longitude *float64 `groups:"detailed"`
}

type stopDeparture struct {
	Time    string `groups:"basic,detailed"`
	Arrival string `groups:"detailed"`

	Stop   string `groups:"basic,detailed"`
	StopID string `groups:"detailed"`

	TripID      string `groups:"basic,detailed"`
	Sequence    int    `groups:"detailed"`
	Destination string `groups:"basic,detailed"`
}

type stopsHandler struct {
	manager *snapshot.Manager
}

func StopsRouter(router fiber.Router, manager *snapshot.Manager) {
	handler := &stopsHandler{
		manager: manager,
	}

	router.Get("/:name", handler.getStops)
	router.Get("/:name/departures", handler.getStopDepartures)
}

// resolve looks up the station name path parameter in the current snapshot.
func (h *stopsHandler) resolve(c *fiber.Ctx) (*snapshot.Snapshot, []string, error) {
	snap := h.manager.Current()
	if snap == nil {
		return nil, nil, sendError(c, fiber.StatusServiceUnavailable, "no timetable snapshot loaded")
	}

	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return nil, nil, sendError(c, fiber.StatusBadRequest, "Could not decode station name")
	}

	stopIDs := snap.Resolve(name)
	if len(stopIDs) == 0 {
		return nil, nil, sendError(c, fiber.StatusNotFound, "Could not find Stop matching station name")
	}

	return snap, stopIDs, nil
}

func (h *stopsHandler) getStops(c *fiber.Ctx) error {
	snap, stopIDs, err := h.resolve(c)
	if snap == nil {
		return err
	}

	stops := make([]stop, 0, len(stopIDs))
	for _, stopID := range stopIDs {
		timetableStop, _ := snap.Stops.Get(stopID)
		stops = append(stops, stop{
			ID:        timetableStop.ID,
			Name:      timetableStop.Name,
			Latitude:  timetableStop.Latitude,
			Longitude: timetableStop.Longitude,
		})
	}

	reduced, err := reduce(c, stops)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "Sheriff could not reduce stops")
	}

	return c.JSON(reduced)
}

func (h *stopsHandler) getStopDepartures(c *fiber.Ctx) error {
	count, err := getCount(c, defaultDepartureCount)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	ref, err := getReferenceTime(c)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "Parameter time should be formatted as HH:MM:SS")
	}

	snap, stopIDs, err := h.resolve(c)
	if snap == nil {
		return err
	}

	var departures []departureboard.Departure
	for _, stopID := range stopIDs {
		departures = append(departures, snap.Board.NextDepartures(stopID, ref, count)...)
	}

	// Stops sharing a name are merged by time, keeping stop load order on ties
	slices.SortStableFunc(departures, func(a, b departureboard.Departure) int {
		return cmp.Compare(a.Time, b.Time)
	})
	if len(departures) > count {
		departures = departures[:count]
	}

	stopDepartures := make([]stopDeparture, 0, len(departures))
	for _, departure := range departures {
		record := stopDeparture{
			Time:        timetable.FormatClock(departure.Time),
			Stop:        snap.StopName(departure.StopID),
			StopID:      departure.StopID,
			TripID:      departure.TripID,
			Sequence:    departure.Sequence,
			Destination: snap.StopName(departure.DestinationStopID),
		}
		if departure.Arrival != nil {
			record.Arrival = timetable.FormatClock(*departure.Arrival)
		}

		stopDepartures = append(stopDepartures, record)
	}

	reduced, err := reduce(c, stopDepartures)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "Sheriff could not reduce departures")
	}

	return c.JSON(reduced)
}
