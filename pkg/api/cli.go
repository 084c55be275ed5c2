package api

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/cachedresults"
	"github.com/travigo/itinerary/pkg/dataimporter"
	"github.com/travigo/itinerary/pkg/dataimporter/manager"
	"github.com/travigo/itinerary/pkg/elastic_client"
	"github.com/travigo/itinerary/pkg/plannerevents"
	"github.com/travigo/itinerary/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the itinerary web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:     "feed",
						Usage:    "ID of the feed to serve",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "feeds-directory",
						Usage: "Directory holding the feed definitions",
						Value: manager.DefaultFeedsDirectory,
					},
				},
				Action: func(c *cli.Context) error {
					if err := elastic_client.Connect(false); err != nil {
						log.Fatal().Err(err).Msg("Failed to connect to Elasticsearch")
					}
					defer elastic_client.WaitUntilQueueEmpty()

					snapshotManager, err := dataimporter.StartFeed(c.Context, c.String("feeds-directory"), c.String("feed"))
					if err != nil {
						return err
					}
					defer snapshotManager.Shutdown()

					var options Options

					if redis_client.Configured() {
						if err := redis_client.Connect(); err != nil {
							log.Fatal().Err(err).Msg("Failed to connect to Redis")
						}

						if err := snapshotManager.SubscribeRefresh(c.Context, redis_client.Client); err != nil {
							return err
						}

						if elastic_client.Client != nil {
							if err := plannerevents.Setup(redis_client.QueueConnection); err != nil {
								return err
							}
							defer plannerevents.Shutdown()
						}

						options.ResultCache = &cachedresults.Cache{}
						options.ResultCache.Setup()
					} else {
						log.Info().Msg("Skipping Redis setup, refresh requests and result cache disabled")
					}

					webApp := NewApp(snapshotManager, options)

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					go func() {
						<-signals
						log.Info().Msg("Shutting down web api")
						webApp.Shutdown()
					}()

					log.Info().Str("listen", c.String("listen")).Str("feed", snapshotManager.FeedID()).Msg("Starting web api")

					return webApp.Listen(c.String("listen"))
				},
			},
		},
	}
}
