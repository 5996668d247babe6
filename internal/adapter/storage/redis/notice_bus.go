package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NoticeBus bridges notices across API instances through a Redis
// pub/sub channel. Publish fans a notice out to every subscribed
// instance; Run consumes the channel on this instance and hands each
// notice to the local sink for socket fan-out.
type NoticeBus struct {
	client  *goredis.Client
	channel string
	log     zerolog.Logger
}

// NewNoticeBus creates a notice bus on the given pub/sub channel.
func NewNoticeBus(client *goredis.Client, channel string, log zerolog.Logger) *NoticeBus {
	return &NoticeBus{
		client:  client,
		channel: channel,
		log:     log,
	}
}

// Publish sends a notice to the pub/sub channel. Callers treat
// failures as best-effort; persisted state is already committed.
func (b *NoticeBus) Publish(ctx context.Context, n domain.Notice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}
	return nil
}

// Run subscribes to the channel and forwards decoded notices to sink
// until ctx is cancelled. Malformed payloads are logged and skipped.
func (b *NoticeBus) Run(ctx context.Context, sink ports.NoticeSink) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	b.log.Info().Str("channel", b.channel).Msg("Notice subscriber started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.log.Info().Msg("Notice subscriber stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var n domain.Notice
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.log.Warn().Err(err).Msg("Dropping malformed notice payload")
				continue
			}
			sink.Broadcast(n)
		}
	}
}
