package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-exporter/internal/model"
)

// service defines the interface for running export jobs.
type service interface {
	RunExport(ctx context.Context, job model.ExportJob) error
}

// RequestedHandler handles Kafka messages for requested batch exports.
type RequestedHandler struct {
	service service
}

// NewRequestedHandler creates a new handler with the given service.
func NewRequestedHandler(s service) *RequestedHandler {
	return &RequestedHandler{service: s}
}

// Handle processes a Kafka message containing an export job. It unmarshals
// the message, runs the export, and logs the result.
func (h *RequestedHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var job model.ExportJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		return fmt.Errorf("unmarshal export job: %w", err)
	}

	if err := h.service.RunExport(ctx, job); err != nil {
		return fmt.Errorf("run export: %w", err)
	}

	zlog.Logger.Info().
		Str("batch_id", job.BatchID.String()).
		Int("assets", len(job.Assets)).
		Msg("batch export finished")

	return nil
}
