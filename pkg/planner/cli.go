package planner

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"
	"github.com/travigo/itinerary/pkg/dataimporter/manager"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/timetable"
	"github.com/urfave/cli/v2"
)

func feedFlags() []cli.Flag {
	return []cli.Flag{
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
		&cli.StringFlag{
			Name:  "time",
			Usage: "Reference time of day as HH:MM:SS",
			Value: "00:00:00",
		},
	}
}

func loadSnapshot(c *cli.Context) (*snapshot.Snapshot, timetable.Clock, error) {
	ref, ok, err := timetable.ParseClock(c.String("time"))
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("%w: empty reference time", timetable.ErrInvalidTimeFormat)
	}

	feed, err := manager.GetFeed(c.String("feeds-directory"), c.String("feed"))
	if err != nil {
		return nil, 0, err
	}

	snap, err := manager.SnapshotLoader(feed)(c.Context)
	if err != nil {
		return nil, 0, err
	}

	return snap, ref, nil
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Plan an itinerary through the given stations",
		ArgsUsage: "<station> <station> [station...]",
		Flags: append(feedFlags(), &cli.BoolFlag{
			Name:  "verbose",
			Usage: "Dump the whole itinerary",
		}),
		Action: func(c *cli.Context) error {
			snap, ref, err := loadSnapshot(c)
			if err != nil {
				return err
			}

			itinerary, err := New(nil).PlanWithSnapshot(c.Context, snap, c.Args().Slice(), ref)
			if err != nil {
				return err
			}

			if c.Bool("verbose") {
				pretty.Fprintf(c.App.Writer, "%# v\n", itinerary)
				return nil
			}

			fmt.Fprintln(c.App.Writer, strings.Join(itinerary.Stops, " -> "))
			fmt.Fprintf(c.App.Writer, "departure %s, arrival %s, duration %s\n",
				itinerary.DepartureTime, itinerary.ArrivalTime, itinerary.DurationText)

			for _, leg := range itinerary.Legs {
				fmt.Fprintf(c.App.Writer, "  leg %d: %s %s -> %s %s (boards %s, rides %s)\n",
					leg.Index, leg.From, leg.DepartureText, leg.To, leg.ArrivalText, leg.TripID, strings.Join(leg.Trips, ", "))
			}

			return nil
		},
	}
}

func RegisterDeparturesCLI() *cli.Command {
	return &cli.Command{
		Name:      "departures",
		Usage:     "List the next departures from a station",
		ArgsUsage: "<station>",
		Flags: append(feedFlags(), &cli.IntFlag{
			Name:  "count",
			Usage: "Number of departures to list per stop",
			Value: 10,
		}),
		Action: func(c *cli.Context) error {
			snap, ref, err := loadSnapshot(c)
			if err != nil {
				return err
			}

			station := c.Args().First()
			stopIDs := snap.Resolve(station)
			if len(stopIDs) == 0 {
				return &NotFoundError{Reason: ReasonUnknownStation, Waypoint: station, LegIndex: -1}
			}

			for _, stopID := range stopIDs {
				for _, departure := range snap.Board.NextDepartures(stopID, ref, c.Int("count")) {
					fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%s\n",
						departure.Time, stopID, departure.TripID, snap.StopName(departure.DestinationStopID))
				}
			}

			return nil
		},
	}
}
