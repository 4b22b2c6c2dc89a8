package models

import "time"

// Asset statuses.
const (
	AssetOperational = "operational"
	AssetDown        = "down"
	AssetMaintenance = "maintenance"
)

type Asset struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Location    string     `json:"location"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	InstallDate *time.Time `json:"install_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
