// Package jobs runs background work: transactional email, the quotation
// expiry sweep, and the low stock scan.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeQuoteExpirySweep scans for quotations near or past expiry.
	TaskTypeQuoteExpirySweep = "sales:quote_expiry"
	// TaskTypeLowStockScan scans the catalog for items under threshold.
	TaskTypeLowStockScan = "inventory:lowstock_scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewQuoteExpirySweepTask constructs the sweep task.
func NewQuoteExpirySweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeQuoteExpirySweep, nil)
}

// NewLowStockScanTask constructs the scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLowStockScan, nil)
}
