package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/itinerary/pkg/api/routes"
	"github.com/travigo/itinerary/pkg/cachedresults"
	"github.com/travigo/itinerary/pkg/snapshot"
)

type Options struct {
	// ResultCache is optional, itineraries are recomputed on every request without it.
	ResultCache *cachedresults.Cache
}

func NewApp(manager *snapshot.Manager, options Options) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger(manager))

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion(manager))

	routes.StopsRouter(group.Group("/stops"), manager)

	routes.PlannerRouter(group.Group("/planner"), manager, options.ResultCache)

	return webApp
}
