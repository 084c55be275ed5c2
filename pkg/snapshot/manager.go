package snapshot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
)

// Loader produces a fresh snapshot, typically by reading a feed from disk or the network.
type Loader func(ctx context.Context) (*Snapshot, error)

// Manager owns the active snapshot. Reloads build a new snapshot off to the
// side and swap it in with a single pointer store, so readers never see a
// partial graph.
type Manager struct {
	feedID string
	loader Loader

	current atomic.Pointer[Snapshot]
	version atomic.Uint64

	reloadMutex sync.Mutex

	refreshSubscription *redis.PubSub

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func NewManager(feedID string, loader Loader) *Manager {
	return &Manager{
		feedID:       feedID,
		loader:       loader,
		shutdownChan: make(chan struct{}),
	}
}

func (m *Manager) FeedID() string {
	return m.feedID
}

// Current returns the active snapshot, or nil before the first successful load.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Reload runs the loader and swaps in its result. On failure the previous
// snapshot stays active and the error is returned.
func (m *Manager) Reload(ctx context.Context) (*Snapshot, error) {
	m.reloadMutex.Lock()
	defer m.reloadMutex.Unlock()

	startTime := time.Now()

	snapshot, err := m.loader(ctx)
	if err != nil {
		log.Error().Err(err).Str("feed", m.feedID).Msg("Failed to reload snapshot, keeping previous")
		return nil, err
	}

	m.Swap(snapshot)

	log.Info().
		Str("feed", m.feedID).
		Uint64("version", snapshot.Version).
		Int("stops", snapshot.Stops.Len()).
		Int("edges", snapshot.Graph.EdgeCount()).
		Str("duration", time.Since(startTime).String()).
		Msg("Swapped snapshot")

	return snapshot, nil
}

// Swap publishes snapshot with the next version number.
func (m *Manager) Swap(snapshot *Snapshot) {
	snapshot.Version = m.version.Add(1)
	m.current.Store(snapshot)
}

// RefreshPeriodically reloads the snapshot on an ISO8601 interval such as
// PT6H until Shutdown is called.
func (m *Manager) RefreshPeriodically(interval string) error {
	period, err := parseInterval(interval)
	if err != nil {
		return err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
				_, _ = m.Reload(ctx)
				cancel()
			case <-m.shutdownChan:
				log.Info().Str("feed", m.feedID).Msg("Stopping periodic snapshot refresh")
				return
			}
		}
	}()

	log.Info().Str("feed", m.feedID).Str("interval", period.String()).Msg("Scheduled snapshot refresh")

	return nil
}

func parseInterval(interval string) (time.Duration, error) {
	duration, err := iso8601.ParseISO8601(interval)
	if err != nil {
		return 0, fmt.Errorf("parsing refresh interval %q: %w", interval, err)
	}

	now := time.Now()
	period := duration.Shift(now).Sub(now)
	if period <= 0 {
		return 0, fmt.Errorf("refresh interval %q must be positive", interval)
	}

	return period, nil
}

// Shutdown stops background refreshes and waits for them to finish.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
		if m.refreshSubscription != nil {
			m.refreshSubscription.Close()
		}
		m.wg.Wait()
	})
}
