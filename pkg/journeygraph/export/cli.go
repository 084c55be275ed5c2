package export

import (
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/dataimporter/manager"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "journeygraph",
		Usage: "Inspect the journey graph built from a feed",
		Subcommands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Write the graph of a feed to Neo4j",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "feed",
						Usage:    "ID of the feed",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "feeds-directory",
						Usage: "Directory holding the feed definitions",
						Value: manager.DefaultFeedsDirectory,
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Print the graph summary without connecting to Neo4j",
					},
				},
				Action: func(c *cli.Context) error {
					feed, err := manager.GetFeed(c.String("feeds-directory"), c.String("feed"))
					if err != nil {
						return err
					}

					table, err := manager.LoadFeed(c.Context, feed)
					if err != nil {
						return err
					}
					snap := snapshot.Build(feed.Identifier, table, feed.NameMatch)

					if c.Bool("dry-run") {
						pretty.Fprintf(c.App.Writer, "%# v\n", snap.GraphReport)
						return nil
					}

					config, err := ConfigFromEnvironment()
					if err != nil {
						return err
					}

					driver, err := Connect(c.Context, config)
					if err != nil {
						log.Fatal().Err(err).Msg("Failed to connect to Neo4j")
					}
					defer driver.Close(c.Context)

					return Export(c.Context, driver, config.Database, snap)
				},
			},
		},
	}
}
