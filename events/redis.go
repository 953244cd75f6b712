package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultChannel = "hangout:events"

// RedisBridge replicates bus traffic across app instances through a Redis
// pub/sub channel. Events published locally are forwarded to Redis; events
// arriving from Redis are folded into the local bus. Each bridge stamps its
// own origin id on outgoing events and ignores its own traffic coming back.
type RedisBridge struct {
	rdb     *redis.Client
	local   Bus
	channel string
	origin  string
}

func NewRedisBridge(rdb *redis.Client, local Bus) *RedisBridge {
	return &RedisBridge{
		rdb:     rdb,
		local:   local,
		channel: defaultChannel,
		origin:  uuid.NewString(),
	}
}

// Run pumps events both ways until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) {
	go b.forwardLocal(ctx)
	go b.consumeRemote(ctx)
}

func (b *RedisBridge) forwardLocal(ctx context.Context) {
	ch, cancel := b.local.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Origin != "" {
				// Already travelled through Redis once.
				continue
			}
			ev.Origin = b.origin
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("⚠️  events: marshal for redis: %v", err)
				continue
			}
			if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
				log.Printf("⚠️  events: redis publish: %v", err)
			}
		}
	}
}

func (b *RedisBridge) consumeRemote(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("⚠️  events: bad payload from redis: %v", err)
				continue
			}
			if ev.Origin == b.origin {
				continue
			}
			b.local.Publish(ctx, ev)
		}
	}
}
