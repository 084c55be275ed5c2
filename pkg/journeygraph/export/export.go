// Package export writes a snapshot's journey graph to Neo4j for inspection.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/snapshot"
	"github.com/travigo/itinerary/pkg/util"
)

const batchSize = 1000

type Config struct {
	URL      string
	Username string
	Password string
	Database string
}

func ConfigFromEnvironment() (Config, error) {
	env := util.GetEnvironmentVariables()

	config := Config{
		URL:      env["TRAVIGO_NEO4J_URL"],
		Username: env["TRAVIGO_NEO4J_USERNAME"],
		Password: env["TRAVIGO_NEO4J_PASSWORD"],
		Database: env["TRAVIGO_NEO4J_DATABASE"],
	}

	if config.URL == "" {
		return config, errors.New("TRAVIGO_NEO4J_URL must be set")
	}
	if config.Database == "" {
		config.Database = "neo4j"
	}

	return config, nil
}

func Connect(ctx context.Context, config Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(config.URL, neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return driver, nil
}

// Export replaces the feed's graph in Neo4j with the snapshot's stops and edges.
func Export(ctx context.Context, driver neo4j.DriverWithContext, database string, snap *snapshot.Snapshot) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, "MATCH (s:Stop {feed: $feed}) DETACH DELETE s", map[string]any{"feed": snap.FeedID})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("clearing previous export: %w", err)
	}

	stops := StopRecords(snap)
	for _, batch := range batches(stops) {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, `
				UNWIND $stops AS stop
				CREATE (s:Stop {feed: $feed, id: stop.id, name: stop.name, latitude: stop.latitude, longitude: stop.longitude})
				`, map[string]any{"feed": snap.FeedID, "stops": batch})
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("writing stops: %w", err)
		}
	}

	edges := EdgeRecords(snap)
	for _, batch := range batches(edges) {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, `
				UNWIND $edges AS edge
				MATCH (o:Stop {feed: $feed, id: edge.from})
				MATCH (d:Stop {feed: $feed, id: edge.to})
				CREATE (o)-[:CONNECTS {duration: edge.duration, trip: edge.trip, approximate: edge.approximate}]->(d)
				`, map[string]any{"feed": snap.FeedID, "edges": batch})
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("writing edges: %w", err)
		}
	}

	log.Info().
		Str("feed", snap.FeedID).
		Int("stops", len(stops)).
		Int("edges", len(edges)).
		Msg("Exported journey graph")

	return nil
}

// StopRecords lists every graph node. Nodes outside the retained stop set
// are exported with their id as the name.
func StopRecords(snap *snapshot.Snapshot) []map[string]any {
	records := make([]map[string]any, 0, len(snap.Graph.Nodes()))

	for _, stopID := range snap.Graph.Nodes() {
		record := map[string]any{
			"id":        stopID,
			"name":      snap.StopName(stopID),
			"latitude":  nil,
			"longitude": nil,
		}

		if stop, ok := snap.Stops.Get(stopID); ok && stop.Latitude != nil {
			record["latitude"] = *stop.Latitude
			record["longitude"] = *stop.Longitude
		}

		records = append(records, record)
	}

	return records
}

func EdgeRecords(snap *snapshot.Snapshot) []map[string]any {
	records := make([]map[string]any, 0, snap.Graph.EdgeCount())

	for _, stopID := range snap.Graph.Nodes() {
		for _, edge := range snap.Graph.Edges(stopID) {
			records = append(records, map[string]any{
				"from":        edge.From,
				"to":          edge.To,
				"duration":    edge.Duration,
				"trip":        edge.TripID,
				"approximate": edge.Approximate,
			})
		}
	}

	return records
}

func batches(records []map[string]any) [][]map[string]any {
	var out [][]map[string]any

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		out = append(out, records[start:end])
	}

	return out
}
