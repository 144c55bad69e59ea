package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/taskboard/task-manager/internal/core/domain"
)

// LocalDeliverer is the in-process side of the relay, normally a realtime.Hub.
type LocalDeliverer interface {
	Deliver(group string, payload []byte) int
}

// Relay fans realtime events out across instances. Broadcast publishes to
// Redis; Run subscribes to every group channel and hands each message to the
// local hub, so a recipient connected to any instance receives it.
type Relay struct {
	client *redis.Client
	local  LocalDeliverer
	log    zerolog.Logger
}

func NewRelay(client *redis.Client, local LocalDeliverer, log zerolog.Logger) *Relay {
	return &Relay{client: client, local: local, log: log}
}

// Broadcast implements ports.Broadcaster. Publish failures are logged only.
func (r *Relay) Broadcast(group string, event domain.RealtimeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.log.Error().Err(err).Str("event", event.Name).Msg("encode realtime event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := r.client.Publish(ctx, channelFor(group), payload).Err(); err != nil {
		r.log.Warn().Err(err).Str("group", group).Msg("realtime publish failed")
	}
}

// Run consumes relayed events until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub, err := subscribeGroups(ctx, r.client)
	if err != nil {
		return err
	}
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			group, ok := groupFrom(msg.Channel)
			if !ok {
				continue
			}
			r.local.Deliver(group, []byte(msg.Payload))
		}
	}
}
