package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"license-admin-go/internal/core"
)

const keyPrefix = "license-admin:session:"

// RedisOptions contains options for connecting the Redis session store.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps operator sessions in Redis as JSON. Every save refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, opts RedisOptions, logger *zap.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Address, err)
	}
	logger.Info("Successfully connected to Redis", zap.String("addr", opts.Address), zap.Int("db", opts.DB))
	return &RedisStore{client: rdb, ttl: opts.TTL, logger: logger}, nil
}

func sessionKey(operator string) string {
	return keyPrefix + operator
}

// Get loads the session of operator, or core.ErrSessionNotFound.
func (s *RedisStore) Get(ctx context.Context, operator string) (*core.SessionState, error) {
	raw, err := s.client.Get(ctx, sessionKey(operator)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session for '%s': %w", operator, err)
	}
	state, err := decodeState(raw)
	if err != nil {
		// A session that no longer decodes is dropped and rebuilt from the store.
		s.logger.Warn("Discarding undecodable session", zap.String("operator", operator), zap.Error(err))
		return nil, core.ErrSessionNotFound
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *core.SessionState) error {
	if state == nil || state.Operator == "" {
		return errors.New("session state requires an operator")
	}
	raw, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKey(state.Operator), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session for '%s': %w", state.Operator, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, operator string) error {
	if err := s.client.Del(ctx, sessionKey(operator)).Err(); err != nil {
		return fmt.Errorf("failed to delete session for '%s': %w", operator, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func encodeState(state *core.SessionState) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return raw, nil
}

func decodeState(raw []byte) (*core.SessionState, error) {
	var state core.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &state, nil
}
