// Package redis connects the realtime relay to Redis pub/sub. Every user
// group maps to one channel, taskmanager:realtime:<group>.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultClientName = "task-manager"

	channelPrefix = "taskmanager:realtime:"
)

// Config captures the settings for the relay connection.
type Config struct {
	Addr       string
	Password   string
	DB         int
	Timeout    time.Duration
	ClientName string
}

// Connect opens a client for the relay and pings it. Empty timeout and
// client name fall back to defaults.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   name,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// subscribeGroups pattern-subscribes to every group channel and waits for
// the server to confirm the subscription.
func subscribeGroups(ctx context.Context, client *redis.Client) (*redis.PubSub, error) {
	sub := client.PSubscribe(ctx, channelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis psubscribe: %w", err)
	}
	return sub, nil
}

func channelFor(group string) string {
	return channelPrefix + group
}

func groupFrom(channel string) (string, bool) {
	group, ok := strings.CutPrefix(channel, channelPrefix)
	return group, ok && group != ""
}
