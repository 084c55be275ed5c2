package plannerevents

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/elastic_client"
)

type IndexBatchConsumer struct {
	index func(indexName string, body io.ReadSeeker)
}

func NewIndexBatchConsumer() *IndexBatchConsumer {
	return &IndexBatchConsumer{
		index: elastic_client.IndexRequest,
	}
}

func (c *IndexBatchConsumer) Consume(batch rmq.Deliveries) {
	for _, delivery := range batch {
		var event Event
		if err := json.Unmarshal([]byte(delivery.Payload()), &event); err != nil {
			log.Warn().Err(err).Msg("Rejecting malformed planner event")

			if err := delivery.Reject(); err != nil {
				log.Error().Err(err).Msg("Failed to reject planner event")
			}
			continue
		}

		c.index(event.IndexName(), bytes.NewReader([]byte(delivery.Payload())))

		if err := delivery.Ack(); err != nil {
			log.Error().Err(err).Str("identifier", event.Identifier).Msg("Failed to ack planner event")
		}
	}
}
