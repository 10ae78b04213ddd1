// Package hardware manages the construction material and equipment catalog.
package hardware

import "time"

// Item represents one hardware or material product in the catalog.
type Item struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Quantity      int       `json:"quantity"`
	Unit          string    `json:"unit"`
	PricePerUnit  float64   `json:"price_per_unit"`
	Supplier      string    `json:"supplier"`
	Description   *string   `json:"description,omitempty"`
	Threshold     int       `json:"threshold"`
	LastRestocked time.Time `json:"last_restocked"`
	RegisteredBy  int64     `json:"registered_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LowStock reports whether the item is under its reorder threshold.
func (i Item) LowStock() bool {
	return i.Quantity < i.Threshold
}

// Available reports whether any stock remains.
func (i Item) Available() bool {
	return i.Quantity > 0
}

// CreateItemRequest carries fields for registering a catalog item.
type CreateItemRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Category     string  `json:"category" validate:"required,oneof=construction electrical plumbing pumps generators other"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	Unit         string  `json:"unit" validate:"required,oneof=kg pieces liters bags tonnes rolls units"`
	PricePerUnit float64 `json:"price_per_unit" validate:"gte=0"`
	Supplier     string  `json:"supplier" validate:"required,max=100"`
	Description  *string `json:"description,omitempty"`
	Threshold    *int    `json:"threshold,omitempty" validate:"omitempty,gte=0"`
}

// UpdateItemRequest carries optional fields for updating a catalog item.
// Supplying Quantity restocks the item and refreshes LastRestocked.
type UpdateItemRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Category     *string  `json:"category,omitempty" validate:"omitempty,oneof=construction electrical plumbing pumps generators other"`
	Quantity     *int     `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Unit         *string  `json:"unit,omitempty" validate:"omitempty,oneof=kg pieces liters bags tonnes rolls units"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty" validate:"omitempty,gte=0"`
	Supplier     *string  `json:"supplier,omitempty" validate:"omitempty,max=100"`
	Description  *string  `json:"description,omitempty"`
	Threshold    *int     `json:"threshold,omitempty" validate:"omitempty,gte=0"`
}

// ListItemsRequest filters catalog listings.
type ListItemsRequest struct {
	Category *string
	Search   *string
	LowStock *bool
	Page     int
	PerPage  int
}

// ItemView is an Item projected with computed stock flags.
type ItemView struct {
	Item
	LowStock  bool `json:"low_stock"`
	Available bool `json:"available"`
}

// NewItemView projects an item with its computed flags.
func NewItemView(item Item) ItemView {
	return ItemView{Item: item, LowStock: item.LowStock(), Available: item.Available()}
}

// DefaultThreshold is applied when a new item does not specify one.
const DefaultThreshold = 10
