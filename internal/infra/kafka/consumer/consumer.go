package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-exporter/internal/config"
)

// requestedHandler defines the interface for handling export-requested messages.
type requestedHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// Consumer represents a Kafka consumer along with its configuration
// and the handler that processes export-requested messages.
type Consumer struct {
	Client           *wbfkafka.Consumer
	requestedHandler requestedHandler
	cfg              *config.Kafka
	strategy         retry.Strategy
}

// New creates a new Consumer.
// - cfg: Kafka configuration struct
// - s: retry strategy
// - rh: handler for processing export-requested messages
func New(
	cfg *config.Kafka,
	s retry.Strategy,
	rh requestedHandler,
) *Consumer {
	consumer := wbfkafka.NewConsumer(cfg.Brokers, cfg.Topic, cfg.GroupID)

	return &Consumer{
		Client:           consumer,
		requestedHandler: rh,
		cfg:              cfg,
		strategy:         s,
	}
}

// Consume continuously fetches messages from Kafka, processes them using the handler,
// and commits offsets after successful processing. It stops gracefully on context cancellation.
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		if err := c.Client.Close(); err != nil {
			zlog.Logger.Err(err).Msg("failed to close consumer")
			return
		}
		zlog.Logger.Info().Msg("consumer closed")
	}()

	zlog.Logger.Info().
		Str("topic", c.cfg.Topic).
		Msg("starting consumer")

	for {
		// Exit if context is canceled (graceful shutdown).
		if ctx.Err() != nil {
			zlog.Logger.Info().Msg("shutdown signal received, stopping consumer")
			return
		}

		// Fetch a message from Kafka with retries.
		var msg kafka.Message
		err := retry.Do(func() error {
			var fetchErr error
			msg, fetchErr = c.Client.Fetch(ctx)
			return fetchErr
		}, c.strategy)

		if err != nil {
			// Log error and retry after a short backoff.
			zlog.Logger.Err(err).Msg("failed to fetch message")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		// Process message using the requestedHandler.
		if err := c.requestedHandler.Handle(ctx, msg); err != nil {
			zlog.Logger.Err(err).
				Str("message", string(msg.Value)).
				Msg("failed to process export job")
			continue
		}

		// Commit the message with retries.
		err = retry.Do(func() error {
			return c.Client.Commit(ctx, msg)
		}, c.strategy)
		if err != nil {
			zlog.Logger.Err(err).Msg("failed to commit message after retries")
		}

		zlog.Logger.Info().
			Int64("offset", msg.Offset).
			Msg("export job handled successfully")
	}
}
