package models

import "time"

// Work order statuses.
const (
	StatusOpen            = "OPEN"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusInProgress      = "IN_PROGRESS"
	StatusCompleted       = "COMPLETED"
	StatusClosed          = "CLOSED"
	StatusCanceled        = "CANCELED"
	StatusRejected        = "REJECTED"
)

// Work order priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// CategoryPreventive marks work orders generated from a preventive schedule.
const CategoryPreventive = "PREVENTIVE"

type WorkOrder struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	AssetID          int        `json:"asset_id"`
	Priority         string     `json:"priority"`
	Category         string     `json:"category"`
	Status           string     `json:"status"`
	OriginScheduleID *int       `json:"origin_schedule_id,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// transitions is the allowed status state machine. PENDING_APPROVAL is the
// entry state for user-submitted requests; OPEN for everything else.
var transitions = map[string][]string{
	StatusPendingApproval: {StatusOpen, StatusRejected, StatusCanceled},
	StatusOpen:            {StatusInProgress, StatusCanceled},
	StatusInProgress:      {StatusCompleted, StatusCanceled},
	StatusCompleted:       {StatusClosed},
}

// CanTransition reports whether a work order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the known work order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusPendingApproval, StatusInProgress,
		StatusCompleted, StatusClosed, StatusCanceled, StatusRejected:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
