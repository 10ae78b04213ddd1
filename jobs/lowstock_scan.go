package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/brickline-erp/brickline-erp/internal/hardware"
)

// LowStockScanJob notifies the stores team about catalog items that have
// fallen below their reorder threshold.
type LowStockScanJob struct {
	service *hardware.Service
	client  *Client
	logger  *slog.Logger
	to      string
}

// NewLowStockScanJob constructs the scan job.
func NewLowStockScanJob(service *hardware.Service, client *Client, logger *slog.Logger, to string) *LowStockScanJob {
	return &LowStockScanJob{service: service, client: client, logger: logger, to: to}
}

// Handle runs one scan.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	items, err := j.service.ListUnderThreshold(ctx)
	if err != nil {
		return fmt.Errorf("list under threshold: %w", err)
	}
	if len(items) == 0 {
		j.logger.Info("low stock scan: nothing to report")
		return nil
	}

	body := "Items under reorder threshold:\n\n"
	for _, it := range items {
		body += fmt.Sprintf("%s  %d %s on hand (threshold %d)\n",
			it.Name, it.Quantity, it.Unit, it.Threshold)
	}
	_, err = j.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      j.to,
		Subject: fmt.Sprintf("%d item(s) under reorder threshold", len(items)),
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("enqueue low stock email: %w", err)
	}
	j.logger.Info("low stock scan complete", slog.Int("items", len(items)))
	return nil
}
