package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/api"
	"github.com/travigo/itinerary/pkg/dataimporter"
	"github.com/travigo/itinerary/pkg/indexer"
	"github.com/travigo/itinerary/pkg/journeygraph/export"
	"github.com/travigo/itinerary/pkg/planner"
	"github.com/urfave/cli/v2"
)

func main() {
	// Values already in the environment win over the .env file
	_ = godotenv.Load()

	if os.Getenv("TRAVIGO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRAVIGO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "itinerary",
		Description: "Plans rail itineraries over a GTFS timetable",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			planner.RegisterCLI(),
			planner.RegisterDeparturesCLI(),
			dataimporter.RegisterCLI(),
			export.RegisterCLI(),
			indexer.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
