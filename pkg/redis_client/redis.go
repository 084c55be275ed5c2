package redis_client

import (
	"context"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/travigo/itinerary/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const queueConnectionTag = "itinerary"

// PlannerQueriesQueue carries planner query events waiting to be indexed.
const PlannerQueriesQueue = "planner-queries"

const feedRefreshChannelPrefix = "feed-refresh:"

// FeedRefreshChannel is the pub/sub channel servers of a feed listen on for
// reload requests.
func FeedRefreshChannel(feedID string) string {
	return feedRefreshChannelPrefix + feedID
}

// Configured reports whether a Redis address has been provided.
func Configured() bool {
	return util.GetEnvironmentVariables()["TRAVIGO_REDIS_ADDRESS"] != ""
}

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword

	env := util.GetEnvironmentVariables()

	if env["TRAVIGO_REDIS_ADDRESS"] != "" {
		address = env["TRAVIGO_REDIS_ADDRESS"]
	}

	if env["TRAVIGO_REDIS_PASSWORD"] != "" {
		password = env["TRAVIGO_REDIS_PASSWORD"]
	}

	database, err := util.GetEnvironmentInt(env, "TRAVIGO_REDIS_DATABASE", defaultDatabase)
	if err != nil {
		return err
	}

	return ConnectWithClient(redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	}))
}

// ConnectWithClient sets up the shared client and queue connection from an
// existing client.
func ConnectWithClient(client *redis.Client) error {
	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	queueConnection, err := rmq.OpenConnectionWithRedisClient(queueConnectionTag, client, nil)
	if err != nil {
		return err
	}

	Client = client
	QueueConnection = queueConnection

	return nil
}

// PublishFeedRefresh asks every server subscribed to the feed to reload it,
// returning how many received the request.
func PublishFeedRefresh(ctx context.Context, feedID string) (int64, error) {
	return Client.Publish(ctx, FeedRefreshChannel(feedID), feedID).Result()
}
