// Package recurrence expands recurring definitions into concrete dated
// occurrences and orchestrates bulk materialization with deduplication.
package recurrence

import (
	"fmt"

	"finlens/internal/services/calendar"
)

// Expand produces the ordered occurrence dates for a (start, frequency, end)
// triple. The sequence is strictly ascending, every consecutive pair differs
// by exactly one frequency step, and no date falls after end (inclusive
// bound). The caller-supplied end keeps the loop finite; there is no
// expand-forever mode.
func Expand(start calendar.Date, freq calendar.Frequency, end calendar.Date, includeStart bool) ([]calendar.Date, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("invalid frequency %q", freq)
	}

	var dates []calendar.Date
	cur := start
	if !includeStart {
		cur = cur.AddPeriod(freq, 1)
	}
	for !cur.After(end) {
		dates = append(dates, cur)
		cur = cur.AddPeriod(freq, 1)
	}
	return dates, nil
}
