package utils

import "time"

// Days returns n consecutive days starting at the midnight of start, in
// start's location. Used to bucket activities into a weekly view.
func Days(start time.Time, n int) []time.Time {
	first := Midnight(start)
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, first.AddDate(0, 0, i))
	}
	return out
}

// Midnight truncates t to the beginning of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
