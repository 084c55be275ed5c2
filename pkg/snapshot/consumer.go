package snapshot

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/redis_client"
)

// SubscribeRefresh reloads the snapshot whenever a refresh of its feed is
// published. Every subscribed server receives its own copy of the request.
func (m *Manager) SubscribeRefresh(ctx context.Context, client *redis.Client) error {
	subscription := client.Subscribe(ctx, redis_client.FeedRefreshChannel(m.feedID))

	// Wait for the subscription to be confirmed so no request published
	// after this returns is missed
	if _, err := subscription.Receive(ctx); err != nil {
		subscription.Close()
		return err
	}

	m.refreshSubscription = subscription

	messages := subscription.Channel()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		for message := range messages {
			m.handleRefreshRequest(message.Payload)
		}
	}()

	log.Info().Str("feed", m.feedID).Msg("Listening for feed refresh requests")

	return nil
}

func (m *Manager) handleRefreshRequest(feedID string) {
	if feedID != m.feedID {
		log.Warn().Str("feed", m.feedID).Str("requested", feedID).Msg("Ignoring refresh request for another feed")
		return
	}

	log.Info().Str("feed", feedID).Msg("Refresh requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := m.Reload(ctx); err != nil {
		log.Error().Err(err).Str("feed", feedID).Msg("Requested refresh failed, keeping previous snapshot")
	}
}
