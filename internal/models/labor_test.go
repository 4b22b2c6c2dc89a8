package models

import (
	"testing"
	"time"
)

func TestDurationMinutesBetween(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		gap  time.Duration
		want int
	}{
		{0, 0},
		{20 * time.Second, 0},
		{40 * time.Second, 1},
		{time.Minute, 1},
		{90 * time.Second, 2},
		{29 * time.Minute, 29},
		{2*time.Hour + 15*time.Minute, 135},
	}
	for _, c := range cases {
		if got := DurationMinutesBetween(start, start.Add(c.gap)); got != c.want {
			t.Errorf("DurationMinutesBetween(+%v): got %d, want %d", c.gap, got, c.want)
		}
	}
}

func TestLaborSessionActive(t *testing.T) {
	s := LaborSession{StartTime: time.Now()}
	if !s.Active() {
		t.Error("session without end time should be active")
	}
	end := time.Now()
	s.EndTime = &end
	if s.Active() {
		t.Error("session with end time should not be active")
	}
}
