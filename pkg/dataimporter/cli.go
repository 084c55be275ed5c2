package dataimporter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/dataimporter/manager"
	"github.com/travigo/itinerary/pkg/redis_client"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slices"
)

func feedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "ID of the feed",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "feeds-directory",
			Usage: "Directory holding the feed definitions",
			Value: manager.DefaultFeedsDirectory,
		},
	}
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Inspect and refresh timetable feeds",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the registered feeds",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "feeds-directory",
						Usage: "Directory holding the feed definitions",
						Value: manager.DefaultFeedsDirectory,
					},
				},
				Action: func(c *cli.Context) error {
					feeds, err := manager.GetRegisteredFeeds(c.String("feeds-directory"))
					if err != nil {
						return err
					}

					for _, feed := range feeds {
						fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", feed.Identifier, feed.Provider.Name, feed.Source)
					}

					return nil
				},
			},
			{
				Name:  "validate",
				Usage: "Load a feed and report what was kept and skipped",
				Flags: feedFlags(),
				Action: func(c *cli.Context) error {
					feed, err := manager.GetFeed(c.String("feeds-directory"), c.String("id"))
					if err != nil {
						return err
					}

					table, err := manager.LoadFeed(c.Context, feed)
					if err != nil {
						return err
					}

					snap := snapshot.Build(feed.Identifier, table, feed.NameMatch)

					for _, report := range snap.Reports {
						fmt.Fprintf(c.App.Writer, "%s: %d rows, %d loaded, %d filtered, %d skipped\n",
							report.File, report.Rows, report.Loaded, report.FilteredRows(), report.SkippedRows())

						reasons := make([]string, 0, len(report.Skipped))
						for reason := range report.Skipped {
							reasons = append(reasons, reason)
						}
						slices.Sort(reasons)

						for _, reason := range reasons {
							fmt.Fprintf(c.App.Writer, "  skipped %s: %d\n", reason, report.Skipped[reason])
						}
					}

					fmt.Fprintf(c.App.Writer, "stops: %d\ntrips: %d\nedges: %d (%d approximate)\n",
						snap.Stops.Len(), table.Trips.Len(), snap.Graph.EdgeCount(), snap.GraphReport.ApproximateReverse)

					return nil
				},
			},
			{
				Name:  "refresh",
				Usage: "Ask running servers to reload a feed",
				Flags: feedFlags(),
				Action: func(c *cli.Context) error {
					feed, err := manager.GetFeed(c.String("feeds-directory"), c.String("id"))
					if err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						log.Fatal().Err(err).Msg("Failed to connect to Redis")
					}

					receivers, err := redis_client.PublishFeedRefresh(c.Context, feed.Identifier)
					if err != nil {
						return err
					}

					log.Info().Str("feed", feed.Identifier).Int64("servers", receivers).Msg("Published refresh request")

					return nil
				},
			},
		},
	}
}

// StartFeed loads a feed into a new snapshot manager and schedules its
// refreshes. The caller owns the returned manager and must Shutdown it.
func StartFeed(ctx context.Context, feedsDirectory string, feedID string) (*snapshot.Manager, error) {
	feed, err := manager.GetFeed(feedsDirectory, feedID)
	if err != nil {
		return nil, err
	}

	snapshotManager := snapshot.NewManager(feed.Identifier, manager.SnapshotLoader(feed))

	if _, err := snapshotManager.Reload(ctx); err != nil {
		return nil, err
	}

	if feed.RefreshInterval != "" {
		if err := snapshotManager.RefreshPeriodically(feed.RefreshInterval); err != nil {
			snapshotManager.Shutdown()
			return nil, err
		}
	}

	return snapshotManager, nil
}
