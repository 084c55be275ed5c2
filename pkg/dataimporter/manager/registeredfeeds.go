package manager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const DefaultFeedsDirectory = "data/feeds/"

var ErrFeedNotFound = errors.New("feed could not be found")

// GetRegisteredFeeds reads every feed definition under directory. Feed
// identifiers are prefixed with their source identifier.
func GetRegisteredFeeds(directory string) ([]Feed, error) {
	var registeredFeeds []Feed
	validate := validator.New()

	err := filepath.Walk(directory,
		func(path string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fileInfo.IsDir() || filepath.Ext(path) != ".yaml" {
				return nil
			}

			log.Debug().Str("path", path).Msg("Loading feeds file")

			feedsYaml, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			decoder := yaml.NewDecoder(bytes.NewReader(feedsYaml))

			for {
				var feedSource FeedSource
				err := decoder.Decode(&feedSource)
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				if err := validate.Struct(feedSource); err != nil {
					return fmt.Errorf("%s: invalid feed source %q: %w", path, feedSource.Identifier, err)
				}

				for _, feed := range feedSource.Feeds {
					feed.Identifier = fmt.Sprintf("%s-%s", feedSource.Identifier, feed.Identifier)
					feed.FeedSourceRef = feedSource.Identifier
					feed.Provider = feedSource.Provider

					registeredFeeds = append(registeredFeeds, feed)
				}
			}

			return nil
		})
	if err != nil {
		return nil, err
	}

	return registeredFeeds, nil
}

func GetFeed(directory string, identifier string) (Feed, error) {
	registered, err := GetRegisteredFeeds(directory)
	if err != nil {
		return Feed{}, err
	}

	for _, feed := range registered {
		if feed.Identifier == identifier {
			return feed, nil
		}
	}

	return Feed{}, fmt.Errorf("%w: %s", ErrFeedNotFound, identifier)
}
