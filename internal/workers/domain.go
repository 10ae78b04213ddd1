// Package workers manages the site worker registry.
package workers

import "time"

// Worker represents a registered site worker.
type Worker struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Contact      string    `json:"contact"`
	Role         string    `json:"role"`
	DailyWage    float64   `json:"daily_wage"`
	RegisteredBy int64     `json:"registered_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateWorkerRequest carries fields for registering a worker.
type CreateWorkerRequest struct {
	Name      string  `json:"name" validate:"required,max=50"`
	Contact   string  `json:"contact" validate:"required,max=50"`
	Role      string  `json:"role" validate:"required,max=50"`
	DailyWage float64 `json:"daily_wage" validate:"gte=0"`
}

// UpdateWorkerRequest carries optional fields for updating a worker.
type UpdateWorkerRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,max=50"`
	Contact   *string  `json:"contact,omitempty" validate:"omitempty,max=50"`
	Role      *string  `json:"role,omitempty" validate:"omitempty,max=50"`
	DailyWage *float64 `json:"daily_wage,omitempty" validate:"omitempty,gte=0"`
}

// ListWorkersRequest filters worker listings.
type ListWorkersRequest struct {
	Search  *string
	Role    *string
	Page    int
	PerPage int
}
