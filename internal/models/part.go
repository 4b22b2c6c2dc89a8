package models

import "time"

// Part is a spare part tracked in inventory.
type Part struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Location    string    `json:"location,omitempty"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	UnitCost    float64   `json:"unit_cost"`
	CreatedAt   time.Time `json:"created_at"`
}

// LowStock reports whether the part is at or below its reorder threshold.
func (p *Part) LowStock() bool {
	return p.Quantity <= p.MinQuantity
}
