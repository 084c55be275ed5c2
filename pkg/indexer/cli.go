package indexer

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/dataimporter/manager"
	"github.com/travigo/itinerary/pkg/elastic_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "indexer",
		Usage: "Indexes data into Elasticsearch",
		Subcommands: []*cli.Command{
			{
				Name:  "stops",
				Usage: "do an index of the Stops of a feed",
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
				},
				Action: func(c *cli.Context) error {
					if err := elastic_client.Connect(true); err != nil {
						return err
					}

					feed, err := manager.GetFeed(c.String("feeds-directory"), c.String("feed"))
					if err != nil {
						return err
					}

					table, err := manager.LoadFeed(c.Context, feed)
					if err != nil {
						return err
					}

					indexName, err := IndexStops(c.Context, feed.Identifier, table.Stops)
					if err != nil {
						return err
					}

					elastic_client.WaitUntilQueueEmpty()

					log.Info().Msg("Index queue emptied")

					return DeleteOldIndexes(c.Context, StopIndexPrefix(feed.Identifier), indexName)
				},
			},
		},
	}
}
