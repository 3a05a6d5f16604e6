package state

import (
	"context"
	"errors"
	"log/slog"

	"github.com/morikuni/failure/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rsilvagit/examwatch/internal/errs"
	"github.com/rsilvagit/examwatch/internal/log"
)

// RedisStore keeps the snapshot as one JSON blob under a single key, without TTL.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedisStore returns a store backed by the Redis server at redisURL.
// URL format: redis://localhost:6379/0
// No connection is made until the first Load or Save.
func NewRedisStore(redisURL, key string, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, failure.Translate(err, errs.ConfigError,
			failure.Message("Invalid STATE_REDIS_URL"),
		)
	}
	if logger == nil {
		logger = log.Logger
	}

	return &RedisStore{
		client: redis.NewClient(opts),
		key:    key,
		logger: logger.With("redis_key", key),
	}, nil
}

func (s *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.logger.Debug("No state in redis yet, starting empty")
		return Snapshot{}, nil
	}
	if err != nil {
		s.warn(err, "Could not read state from redis, starting fresh")
		return Snapshot{}, nil
	}

	snap, err := decode(data)
	if err != nil {
		s.warn(err, "Could not parse state from redis, starting fresh")
		return Snapshot{}, nil
	}
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return failure.Translate(err, errs.StateSaveError,
			failure.Message("Could not encode state"),
		)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return failure.Translate(err, errs.StateSaveError,
			failure.Message("Could not write state to redis"),
			failure.Context{"key": s.key},
		)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) warn(err error, msg string) {
	err = failure.Translate(err, errs.StateLoadError)
	s.logger.Warn(msg, "error", err)
}
