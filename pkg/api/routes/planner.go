package routes

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/cachedresults"
	"github.com/travigo/itinerary/pkg/planner"
	"github.com/travigo/itinerary/pkg/plannerevents"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/util"
)

type plannerHandler struct {
	manager     *snapshot.Manager
	planner     *planner.Planner
	resultCache *cachedresults.Cache
}

// PlannerRouter serves itineraries for the feed held by manager. resultCache
// may be nil when Redis is not configured.
func PlannerRouter(router fiber.Router, manager *snapshot.Manager, resultCache *cachedresults.Cache) {
	handler := &plannerHandler{
		manager:     manager,
		planner:     planner.New(manager),
		resultCache: resultCache,
	}

	router.Get("/", handler.getItinerary)
}

func (h *plannerHandler) getItinerary(c *fiber.Ctx) error {
	waypoints := util.SplitAndTrim(c.Query("waypoints"), ",")

	ref, err := getReferenceTime(c)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "Parameter time should be formatted as HH:MM:SS")
	}

	snap := h.manager.Current()
	if snap == nil {
		return sendError(c, fiber.StatusServiceUnavailable, planner.ErrNoSnapshot.Error())
	}

	ctx := c.UserContext()
	cacheKey := cachedresults.ItineraryKey(snap.FeedID, snap.Fingerprint, waypoints, ref)

	var itinerary *planner.Itinerary
	if h.resultCache != nil {
		itinerary, _ = h.resultCache.GetItinerary(ctx, cacheKey)
	}

	if itinerary == nil {
		itinerary, err = h.planner.PlanWithSnapshot(ctx, snap, waypoints, ref)

		queryID := recordPlannerQuery(snap.FeedID, waypoints, itinerary, err)
		c.Set("X-Itinerary-Query", queryID)

		if err != nil {
			return sendPlannerError(c, err)
		}

		if h.resultCache != nil {
			if err := h.resultCache.SetItinerary(ctx, cacheKey, itinerary); err != nil {
				log.Error().Err(err).Str("key", cacheKey).Msg("Failed to cache itinerary")
			}
		}
	}

	reduced, err := reduce(c, itinerary)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "Sheriff could not reduce itinerary")
	}

	return c.JSON(reduced)
}

func sendPlannerError(c *fiber.Ctx, err error) error {
	var notFound *planner.NotFoundError

	switch {
	case errors.As(err, &notFound):
		response := fiber.Map{
			"error":  notFound.Error(),
			"reason": notFound.Reason,
		}
		if notFound.Reason == planner.ReasonUnknownStation {
			response["waypoint_index"] = notFound.WaypointIndex
			response["waypoint"] = notFound.Waypoint
		} else {
			response["leg_index"] = notFound.LegIndex
			response["detail"] = notFound.Detail
		}

		c.Status(fiber.StatusNotFound)
		return c.JSON(response)
	case errors.Is(err, planner.ErrTooFewWaypoints):
		return sendError(c, fiber.StatusBadRequest, "Parameter waypoints should list at least 2 stations")
	case errors.Is(err, planner.ErrNoSnapshot):
		return sendError(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg("Planner failed")
		return sendError(c, fiber.StatusInternalServerError, "Could not plan itinerary")
	}
}

// recordPlannerQuery records the outcome of a computed plan and returns the
// event identifier.
func recordPlannerQuery(feedID string, waypoints []string, itinerary *planner.Itinerary, err error) string {
	event := plannerevents.Event{
		Identifier: uuid.NewString(),
		Timestamp:  time.Now(),
		Success:    err == nil,
		LegIndex:   -1,
		Feed:       feedID,
		Waypoints:  waypoints,
	}

	var notFound *planner.NotFoundError
	if errors.As(err, &notFound) {
		event.FailReason = string(notFound.Reason)
		if notFound.Reason == planner.ReasonNoRouteForLeg {
			event.LegIndex = notFound.LegIndex
		}
	} else if err != nil {
		event.FailReason = err.Error()
	}

	if itinerary != nil {
		event.Duration = itinerary.Duration
	}

	plannerevents.Record(event)

	return event.Identifier
}
