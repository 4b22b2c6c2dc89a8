package models

import "testing"

func TestEffectiveFrequencyDays(t *testing.T) {
	cases := []struct {
		freq, want int
	}{
		{30, 30},
		{7, 7},
		{1, 1},
		{0, DefaultFrequencyDays},
		{-5, DefaultFrequencyDays},
	}
	for _, c := range cases {
		s := PreventiveSchedule{FrequencyDays: c.freq}
		if got := s.EffectiveFrequencyDays(); got != c.want {
			t.Errorf("EffectiveFrequencyDays(freq=%d): got %d, want %d", c.freq, got, c.want)
		}
	}
}
