// Package notify publishes committed locker changes to external subscribers
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/event"
)

// DefaultChannelPrefix namespaces the per-locker channels
const DefaultChannelPrefix = "lockers"

// Publisher is the subset of *redis.Client the notifier uses
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisOptions configures the client
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a client and checks it with a ping
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisNotifier publishes each snapshot as JSON on <prefix>:<lockerId>
type RedisNotifier struct {
	publisher Publisher
	prefix    string
	logger    coreport.Logger
}

var _ event.ChangeNotifier = (*RedisNotifier)(nil)

// NewRedisNotifier creates a notifier
func NewRedisNotifier(publisher Publisher, prefix string, logger coreport.Logger) *RedisNotifier {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisNotifier{publisher: publisher, prefix: prefix, logger: logger}
}

// Channel returns the channel name for a locker
func (n *RedisNotifier) Channel(lockerID string) string {
	return n.prefix + ":" + lockerID
}

// LockerChanged publishes the snapshot
func (n *RedisNotifier) LockerChanged(ctx context.Context, snapshot entity.LockerSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode locker snapshot: %w", err)
	}

	receivers, err := n.publisher.Publish(ctx, n.Channel(snapshot.LockerID), payload).Result()
	if err != nil {
		return fmt.Errorf("publish locker snapshot: %w", err)
	}

	n.logger.Debug("Locker change published", map[string]any{
		"locker_id": snapshot.LockerID,
		"version":   snapshot.Version,
		"receivers": receivers,
	})
	return nil
}

// NoopNotifier drops every snapshot
type NoopNotifier struct{}

// LockerChanged does nothing
func (NoopNotifier) LockerChanged(context.Context, entity.LockerSnapshot) error { return nil }
