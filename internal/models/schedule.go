package models

import "time"

// DefaultFrequencyDays is used when a schedule's frequency is zero or negative,
// so a bad row can never regenerate a work order on every scan.
const DefaultFrequencyDays = 30

// PreventiveSchedule represents a recurring maintenance task for an asset.
type PreventiveSchedule struct {
	ID            int        `json:"id"`
	AssetID       int        `json:"asset_id"`
	TaskTitle     string     `json:"task_title"`
	Description   string     `json:"description,omitempty"`
	FrequencyDays int        `json:"frequency_days"`
	LastRunDate   *time.Time `json:"last_run_date,omitempty"`
	NextDueDate   time.Time  `json:"next_due_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

// EffectiveFrequencyDays returns the schedule's cadence, falling back to
// DefaultFrequencyDays for invalid (<= 0) values.
func (s *PreventiveSchedule) EffectiveFrequencyDays() int {
	if s.FrequencyDays <= 0 {
		return DefaultFrequencyDays
	}
	return s.FrequencyDays
}
