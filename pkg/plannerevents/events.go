package plannerevents

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/elastic_client"
	"github.com/travigo/itinerary/pkg/redis_client"
)

const IndexPrefix = "planner-queries"

const (
	consumerBatchSize = 20
	consumerTimeout   = 2 * time.Second
)

// Event records the outcome of a single computed plan.
type Event struct {
	Identifier string
	Timestamp  time.Time

	Success    bool
	FailReason string
	LegIndex   int

	Feed      string
	Waypoints []string
	Duration  int
}

func (e *Event) IndexName() string {
	return elastic_client.WeeklyIndexName(IndexPrefix, e.Timestamp)
}

var queue rmq.Queue

// Setup routes recorded events through the shared Redis queue so each one is
// indexed once by whichever server consumes it.
func Setup(connection rmq.Connection) error {
	eventQueue, err := connection.OpenQueue(redis_client.PlannerQueriesQueue)
	if err != nil {
		return err
	}

	if err := eventQueue.StartConsuming(consumerBatchSize*2, time.Second); err != nil {
		return err
	}

	if _, err := eventQueue.AddBatchConsumer("planner-queries-indexer", consumerBatchSize, consumerTimeout, NewIndexBatchConsumer()); err != nil {
		<-eventQueue.StopConsuming()
		return err
	}

	queue = eventQueue

	log.Info().Str("queue", redis_client.PlannerQueriesQueue).Msg("Started planner event consumer")

	return nil
}

// Shutdown waits for in flight batches to finish and returns to indexing
// events directly.
func Shutdown() {
	if queue == nil {
		return
	}

	<-queue.StopConsuming()
	queue = nil
}

// Record queues the event when a queue is set up, otherwise it indexes it
// straight away.
func Record(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode planner event")
		return
	}

	if queue != nil {
		err := queue.PublishBytes(payload)
		if err == nil {
			return
		}

		log.Error().Err(err).Msg("Failed to queue planner event, indexing directly")
	}

	elastic_client.IndexRequest(event.IndexName(), bytes.NewReader(payload))
}
