package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"drawpoker-server/pkg/engine"
)

// Store is a Redis-backed cache of public table snapshots.
// Only the anonymous, fully censored view is ever cached; views that depend
// on who is asking are always computed fresh so visibility is never served
// stale across a state transition. The engine invalidates the snapshot on
// every commit.
type Store struct {
	client *redis.Client
	cfg    Config
	log    logrus.FieldLogger
}

// New creates a new snapshot store
func New(cfg Config, logger logrus.FieldLogger) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a snapshot store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger logrus.FieldLogger) *Store {
	return &Store{
		client: client,
		cfg:    cfg,
		log:    logger,
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

var _ engine.Cache = (*Store)(nil)

// Invalidate drops the table's snapshot. Called by the engine after every
// commit; a failed delete is logged and the TTL backstop takes over.
func (s *Store) Invalidate(tableUUID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Del(ctx, tableKey(tableUUID)).Err(); err != nil {
		s.log.WithError(err).WithField("table", tableUUID).Error("could not invalidate snapshot")
	}
}

// Table returns the table's public snapshot, loading and caching it on a miss
func (s *Store) Table(ctx context.Context, tableUUID string, load func() (*engine.TableDetails, error)) (*engine.TableDetails, error) {
	data, err := s.client.Get(ctx, tableKey(tableUUID)).Bytes()
	if err == nil {
		var details engine.TableDetails
		if err := json.Unmarshal(data, &details); err == nil {
			return &details, nil
		}

		s.log.WithField("table", tableUUID).Warn("discarding undecodable snapshot")
	} else if !errors.Is(err, redis.Nil) {
		s.log.WithError(err).WithField("table", tableUUID).Error("snapshot read failed")
	}

	details, err := load()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(details); err == nil {
		if err := s.client.Set(ctx, tableKey(tableUUID), data, s.cfg.TableTTL).Err(); err != nil {
			s.log.WithError(err).WithField("table", tableUUID).Error("snapshot write failed")
		}
	}

	return details, nil
}
