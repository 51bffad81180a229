package producer

import (
	"context"
	"encoding/json"
	"fmt"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/media-exporter/internal/config"
	"github.com/aliskhannn/media-exporter/internal/model"
)

// Producer represents a Kafka producer for export jobs.
type Producer struct {
	Client   *wbfkafka.Producer
	strategy retry.Strategy
	cfg      *config.Kafka
}

// New creates a new Producer.
// - cfg: Kafka configuration struct
// - s: retry strategy
func New(
	cfg *config.Kafka,
	s retry.Strategy,
) *Producer {
	producer := wbfkafka.NewProducer(cfg.Brokers, cfg.Topic)

	return &Producer{
		Client:   producer,
		cfg:      cfg,
		strategy: s,
	}
}

// Produce serializes the export job to JSON and sends it to Kafka. The
// batch ID is used as the message key for partitioning and ordering.
func (p *Producer) Produce(ctx context.Context, job model.ExportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal export job: %v", err)
	}

	key := []byte(job.BatchID.String())

	if err = p.Client.SendWithRetry(ctx, p.strategy, key, data); err != nil {
		return fmt.Errorf("failed to send export job: %v", err)
	}

	return nil
}
