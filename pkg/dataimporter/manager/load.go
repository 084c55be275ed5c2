package manager

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/timetable"
)

// LoadFeed opens the feed bundle and parses its timetable.
func LoadFeed(ctx context.Context, feed Feed) (*timetable.Timetable, error) {
	startTime := time.Now()

	options, err := feed.LoadOptions()
	if err != nil {
		return nil, err
	}

	bundle, err := OpenFeed(ctx, feed.Source)
	if err != nil {
		return nil, err
	}
	defer bundle.Close()

	table, err := timetable.Load(bundle.FS, options)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("feed", feed.Identifier).
		Str("duration", time.Since(startTime).String()).
		Msg("Loaded feed")

	return table, nil
}

// SnapshotLoader builds a fresh snapshot of the feed each time it is called.
func SnapshotLoader(feed Feed) snapshot.Loader {
	return func(ctx context.Context) (*snapshot.Snapshot, error) {
		table, err := LoadFeed(ctx, feed)
		if err != nil {
			return nil, err
		}

		return snapshot.Build(feed.Identifier, table, feed.NameMatch), nil
	}
}
