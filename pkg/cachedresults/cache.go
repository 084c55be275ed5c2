package cachedresults

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/itinerary/pkg/planner"
	"github.com/travigo/itinerary/pkg/redis_client"
	"github.com/travigo/itinerary/pkg/timetable"
)

type Cache struct {
	Cache *cache.Cache[string]
}

func (c *Cache) Setup() {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(90*time.Minute))

	c.Cache = cache.New[string](redisStore)
}

// ItineraryKey identifies a plan. Results only depend on the snapshot
// content fingerprint, the normalised waypoints and the reference time, so
// servers sharing the cache agree on keys even when their versions differ.
func ItineraryKey(feedID string, fingerprint string, waypoints []string, ref timetable.Clock) string {
	normalised := make([]string, len(waypoints))
	for i, waypoint := range waypoints {
		normalised[i] = timetable.NormaliseName(waypoint)
	}

	return fmt.Sprintf("cachedresults/itinerary/%s/%s/%d/%s", feedID, fingerprint, ref, strings.Join(normalised, "|"))
}

func (c *Cache) GetItinerary(ctx context.Context, key string) (*planner.Itinerary, bool) {
	cachedObject, err := c.Cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var itinerary planner.Itinerary
	if err := json.Unmarshal([]byte(cachedObject), &itinerary); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cached itinerary")
		return nil, false
	}

	return &itinerary, true
}

func (c *Cache) SetItinerary(ctx context.Context, key string, itinerary *planner.Itinerary) error {
	itineraryJson, err := json.Marshal(itinerary)
	if err != nil {
		return err
	}

	return c.Cache.Set(ctx, key, string(itineraryJson))
}
