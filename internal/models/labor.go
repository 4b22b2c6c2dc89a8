package models

import (
	"math"
	"time"
)

// LaborSession is one continuous interval of recorded work time by one user
// on one work order. EndTime nil means the session is still running.
type LaborSession struct {
	ID              int        `json:"id"`
	WorkOrderID     int        `json:"work_order_id"`
	UserID          int        `json:"user_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Note            string     `json:"note,omitempty"`
}

// Active reports whether the session is still running.
func (s *LaborSession) Active() bool {
	return s.EndTime == nil
}

// DurationMinutesBetween computes the recorded duration for a closed session.
// A sub-30-second session rounds down to zero minutes.
func DurationMinutesBetween(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
