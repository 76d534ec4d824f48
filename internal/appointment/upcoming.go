package appointment

import "time"

// Snapshot is the derived view of the document: how many non-terminal
// appointments still lie ahead and which one is chronologically nearest.
// It is recomputed on every observation cycle and never stored.
type Snapshot struct {
	Count int
	Next  *Record
}

// Upcoming filters the records to those with an id, a date, a time and a
// non-terminal status, keeps the ones starting at or after now, and picks
// the one with the smallest distance to now. Ties keep the record seen
// first in document order. A record whose date/time does not parse is
// skipped on its own; it never fails the whole computation.
func Upcoming(records []Record, now time.Time) Snapshot {
	var snap Snapshot
	closest := time.Duration(-1)

	for i := range records {
		r := records[i]
		if r.ID == "" || r.Date == "" || r.Time == "" {
			continue
		}
		if r.Terminal() {
			continue
		}
		start, err := ParseStart(r.Date, r.Time, now.Location())
		if err != nil {
			continue
		}
		if start.Before(now) {
			continue
		}
		snap.Count++
		diff := start.Sub(now)
		if closest < 0 || diff < closest {
			closest = diff
			next := r
			snap.Next = &next
		}
	}
	return snap
}
