package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/snapshot"
)

// NewLogger writes one line per request tagged with the feed and the
// snapshot that answered it, so a bad answer can be traced to the data it
// came from.
func NewLogger(manager *snapshot.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()

		// Read before the handler runs so a reload mid request is not misattributed
		snap := manager.Current()

		msg := "HTTP Request"
		if err := c.Next(); err != nil {
			msg = err.Error()
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				c.Status(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()

		event := requestLogEvent(status).
			Int("status", status).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("feed", manager.FeedID()).
			Str("latency", time.Since(startTime).String())

		if snap != nil {
			event = event.Uint64("snapshot_version", snap.Version).Str("snapshot", snap.Fingerprint)
		}
		if waypoints := c.Query("waypoints"); waypoints != "" {
			event = event.Str("waypoints", waypoints)
		}
		if queryID := c.GetRespHeader("X-Itinerary-Query"); queryID != "" {
			event = event.Str("query_id", queryID)
		}

		event.Msg(msg)

		return nil
	}
}

func requestLogEvent(status int) *zerolog.Event {
	switch {
	case status >= fiber.StatusInternalServerError:
		return log.Error()
	case status >= fiber.StatusBadRequest:
		return log.Warn()
	default:
		return log.Info()
	}
}
