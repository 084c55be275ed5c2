package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/itinerary/pkg/snapshot"
)

const apiVersion = "v1.0"

func APIVersion(manager *snapshot.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		response := fiber.Map{
			"version": apiVersion,
			"feed":    manager.FeedID(),
		}

		if snap := manager.Current(); snap != nil {
			response["snapshot_version"] = snap.Version
			response["snapshot_loaded_at"] = snap.LoadedAt
		}

		return c.JSON(response)
	}
}
