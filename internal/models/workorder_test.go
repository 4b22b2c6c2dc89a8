package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusCanceled, true},
		{StatusOpen, StatusCompleted, false},
		{StatusOpen, StatusClosed, false},
		{StatusPendingApproval, StatusOpen, true},
		{StatusPendingApproval, StatusRejected, true},
		{StatusPendingApproval, StatusCanceled, true},
		{StatusPendingApproval, StatusInProgress, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCanceled, true},
		{StatusInProgress, StatusOpen, false},
		{StatusCompleted, StatusClosed, true},
		{StatusCompleted, StatusInProgress, false},
		{StatusClosed, StatusOpen, false},
		{StatusCanceled, StatusOpen, false},
		{StatusRejected, StatusOpen, false},
		{"BOGUS", StatusOpen, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s): got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusOpen, StatusPendingApproval, StatusInProgress, StatusCompleted, StatusClosed, StatusCanceled, StatusRejected} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s): got false", s)
		}
	}
	for _, s := range []string{"", "open", "DONE"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q): got true", s)
		}
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh} {
		if !ValidPriority(p) {
			t.Errorf("ValidPriority(%s): got false", p)
		}
	}
	if ValidPriority("URGENT") || ValidPriority("") {
		t.Error("ValidPriority accepted an unknown priority")
	}
}
