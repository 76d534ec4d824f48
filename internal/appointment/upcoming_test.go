package appointment

import (
	"testing"
	"time"
)

var noon = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

const (
	today     = "2026-03-14"
	yesterday = "2026-03-13"
	tomorrow  = "2026-03-15"
)

func TestUpcomingPicksNearestFutureRecord(t *testing.T) {
	records := []Record{
		{ID: "a1", Date: today, Time: "10:00 AM", Status: StatusScheduled},
		{ID: "a2", Date: today, Time: "02:00 PM", Status: StatusScheduled},
		{ID: "a3", Date: yesterday, Time: "09:00 AM", Status: StatusScheduled},
	}

	snap := Upcoming(records, noon)
	if snap.Count != 1 {
		t.Fatalf("count = %d, want 1", snap.Count)
	}
	if snap.Next == nil || snap.Next.ID != "a2" {
		t.Fatalf("next = %+v, want a2", snap.Next)
	}
}

func TestUpcomingExcludesTerminalStatuses(t *testing.T) {
	records := []Record{
		{ID: "a1", Date: tomorrow, Time: "09:00 AM", Status: StatusCancelled},
		{ID: "a2", Date: tomorrow, Time: "10:00 AM", Status: StatusCompleted},
	}
	snap := Upcoming(records, noon)
	if snap.Count != 0 || snap.Next != nil {
		t.Fatalf("terminal records leaked into aggregate: %+v", snap)
	}
}

func TestUpcomingTiesKeepDocumentOrder(t *testing.T) {
	records := []Record{
		{ID: "first", Date: tomorrow, Time: "09:00 AM", Status: StatusScheduled},
		{ID: "second", Date: tomorrow, Time: "09:00 AM", Status: StatusInProgress},
	}
	snap := Upcoming(records, noon)
	if snap.Count != 2 {
		t.Fatalf("count = %d, want 2", snap.Count)
	}
	if snap.Next.ID != "first" {
		t.Fatalf("tie broke to %q, want first-encountered record", snap.Next.ID)
	}
}

func TestUpcomingSkipsMalformedAndIncompleteRecords(t *testing.T) {
	records := []Record{
		{ID: "", Date: tomorrow, Time: "09:00 AM", Status: StatusScheduled},
		{ID: "no-date", Date: "", Time: "09:00 AM", Status: StatusScheduled},
		{ID: "no-time", Date: tomorrow, Time: "", Status: StatusScheduled},
		{ID: "bad-clock", Date: tomorrow, Time: "soonish", Status: StatusScheduled},
		{ID: "ok", Date: tomorrow, Time: "09:00 AM", Status: StatusScheduled},
	}
	snap := Upcoming(records, noon)
	if snap.Count != 1 || snap.Next == nil || snap.Next.ID != "ok" {
		t.Fatalf("malformed records should be skipped individually, got %+v", snap)
	}
}

func TestUpcomingEmpty(t *testing.T) {
	snap := Upcoming(nil, noon)
	if snap.Count != 0 || snap.Next != nil {
		t.Fatalf("empty input should yield zero snapshot, got %+v", snap)
	}
}
