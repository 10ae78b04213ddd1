package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brickline-erp/brickline-erp/internal/sales"
)

// QuoteExpiryHorizon is how far ahead the sweep looks for quotations about
// to lapse. Quotations already past their window are included too.
const QuoteExpiryHorizon = 72 * time.Hour

// QuoteExpiryJob notifies the sales desk about quotations near or past
// expiry. Quotations are never auto cancelled; the desk decides.
type QuoteExpiryJob struct {
	service *sales.Service
	client  *Client
	logger  *slog.Logger
	to      string
}

// NewQuoteExpiryJob constructs the sweep job.
func NewQuoteExpiryJob(service *sales.Service, client *Client, logger *slog.Logger, to string) *QuoteExpiryJob {
	return &QuoteExpiryJob{service: service, client: client, logger: logger, to: to}
}

// Handle runs one sweep.
func (j *QuoteExpiryJob) Handle(ctx context.Context, t *asynq.Task) error {
	quotes, err := j.service.ListExpiringQuotations(ctx, QuoteExpiryHorizon)
	if err != nil {
		return fmt.Errorf("list expiring quotations: %w", err)
	}
	if len(quotes) == 0 {
		j.logger.Info("quote expiry sweep: nothing to report")
		return nil
	}

	body := "Quotations expiring within 72 hours:\n\n"
	for _, q := range quotes {
		body += fmt.Sprintf("%s  %s  %s  due %s\n",
			q.QuotationNumber, q.CustomerName,
			sales.FormatMoney(q.TotalPrice), q.ValidUntil.Format("2006-01-02"))
	}
	_, err = j.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      j.to,
		Subject: fmt.Sprintf("%d quotation(s) expiring soon", len(quotes)),
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("enqueue expiry email: %w", err)
	}
	j.logger.Info("quote expiry sweep complete", slog.Int("quotations", len(quotes)))
	return nil
}
