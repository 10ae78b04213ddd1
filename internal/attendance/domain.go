// Package attendance tracks daily site attendance for registered workers.
package attendance

import "time"

// Record represents one worker's attendance for one day.
type Record struct {
	ID         int64     `json:"id"`
	WorkerID   int64     `json:"worker_id"`
	WorkerName string    `json:"worker_name,omitempty"`
	Date       time.Time `json:"date"`
	Present    bool      `json:"present"`
	Site       string    `json:"site"`
	MarkedBy   int64     `json:"marked_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MarkRequest carries fields for marking attendance.
type MarkRequest struct {
	WorkerID int64  `json:"worker_id" validate:"required,gt=0"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Present  bool   `json:"present"`
	Site     string `json:"site" validate:"required,max=100"`
}

// UpdateRequest carries optional fields for correcting a record.
type UpdateRequest struct {
	Present *bool   `json:"present,omitempty"`
	Site    *string `json:"site,omitempty" validate:"omitempty,max=100"`
}

// ListRequest filters attendance listings.
type ListRequest struct {
	WorkerID *int64
	Site     *string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PerPage  int
}
