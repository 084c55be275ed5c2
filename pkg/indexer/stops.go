package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/elastic_client"
	"github.com/travigo/itinerary/pkg/timetable"
)

const stopIndexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 1
	},
	"mappings": {
		"properties": {
			"Feed": {
				"type": "keyword"
			},
			"ID": {
				"type": "keyword"
			},
			"Name": {
				"type": "text",
				"fields": {
					"keyword": {
						"type": "keyword",
						"ignore_above": 256
					},
					"search_as_you_type": {
						"type": "search_as_you_type"
					}
				}
			},
			"Location": {
				"type": "geo_point"
			}
		}
	}
}`

type stopDocument struct {
	Feed     string
	ID       string
	Name     string
	Location *stopLocation `json:",omitempty"`
}

type stopLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func StopIndexPrefix(feedID string) string {
	return fmt.Sprintf("itinerary-stops-%s", strings.ToLower(feedID))
}

// IndexStops creates a fresh index for the feed and queues every stop on the
// bulk indexer. The new index name is returned so older ones can be removed
// once the queue is empty.
func IndexStops(ctx context.Context, feedID string, stops *timetable.Stops) (string, error) {
	indexName := fmt.Sprintf("%s-%d", StopIndexPrefix(feedID), time.Now().Unix())

	if err := createStopIndex(ctx, indexName); err != nil {
		return "", err
	}

	for _, stopID := range stops.IDs() {
		stop, _ := stops.Get(stopID)

		document := stopDocument{
			Feed: feedID,
			ID:   stop.ID,
			Name: stop.Name,
		}
		if stop.Latitude != nil && stop.Longitude != nil {
			document.Location = &stopLocation{Lat: *stop.Latitude, Lon: *stop.Longitude}
		}

		jsonStop, err := json.Marshal(document)
		if err != nil {
			return "", err
		}

		elastic_client.IndexRequest(indexName, bytes.NewReader(jsonStop))
	}

	log.Info().Str("index", indexName).Int("stops", stops.Len()).Msg("Sent all index requests to queue")

	return indexName, nil
}

func createStopIndex(ctx context.Context, indexName string) error {
	indexReq := esapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(stopIndexMapping),
	}

	resp, err := indexReq.Do(ctx, elastic_client.Client)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("creating index %s: %s %s", indexName, resp.Status(), body)
	}

	log.Info().Str("index", indexName).Msg("Created index")

	return nil
}
