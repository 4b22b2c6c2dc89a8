package models

import "time"

// MeterReading is one sampled value of a named meter on an asset
// (e.g. kwh, hours, cycles). Readings are append-only.
type MeterReading struct {
	ID        int       `json:"id"`
	AssetID   int       `json:"asset_id"`
	Meter     string    `json:"meter"`
	Value     float64   `json:"value"`
	ReadingAt time.Time `json:"reading_at"`
	CreatedAt time.Time `json:"created_at"`
}
