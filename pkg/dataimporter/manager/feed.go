package manager

import (
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/timetable"
)

// FeedSource is one provider document in data/feeds/*.yaml.
type FeedSource struct {
	Identifier string `validate:"required"`
	Region     string
	Provider   Provider `validate:"required"`
	Feeds      []Feed   `validate:"required,min=1,dive"`
}

type Provider struct {
	Name    string `validate:"required"`
	Website string `validate:"omitempty,url"`
}

// Feed describes where a timetable lives and how its stops are filtered.
type Feed struct {
	Identifier    string   `validate:"required"`
	FeedSourceRef string   `yaml:"-"`
	Provider      Provider `yaml:"-" validate:"-"`

	// Source is a directory, a zip archive or an http(s) URL to a zip archive.
	Source string `validate:"required"`

	StopsFile     string
	StopTimesFile string

	AreaPrefixes     []string
	PlatformPrefixes []string
	StopFilter       string

	NameMatch snapshot.NameMatch `validate:"omitempty,oneof=exact contains"`

	// RefreshInterval is an ISO8601 duration such as PT6H.
	RefreshInterval string
}

// LoadOptions turns the feed definition into timetable load options,
// applying the rail platform defaults when no prefixes are configured.
func (f *Feed) LoadOptions() (timetable.LoadOptions, error) {
	areaPrefixes := f.AreaPrefixes
	if len(areaPrefixes) == 0 {
		areaPrefixes = []string{timetable.DefaultAreaPrefix}
	}

	platformPrefixes := f.PlatformPrefixes
	if len(platformPrefixes) == 0 {
		platformPrefixes = []string{timetable.DefaultPlatformPrefix}
	}

	filter, err := timetable.NewStopFilter(areaPrefixes, platformPrefixes, f.StopFilter)
	if err != nil {
		return timetable.LoadOptions{}, err
	}

	return timetable.LoadOptions{
		StopsFile:     f.StopsFile,
		StopTimesFile: f.StopTimesFile,
		Filter:        filter,
	}, nil
}
