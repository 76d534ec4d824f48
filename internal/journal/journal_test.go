package journal

import (
	"context"
	"path/filepath"
	"testing"
)

func TestJournalAppendAndRecent(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "sync_events.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	entries := []Entry{
		{Kind: "invite", SessionID: "sess-1", Title: "Incoming video call"},
		{Kind: "reset", Title: "Call withdrawn"},
		{Kind: "accepted", Title: "Dr. Harpreet Singh accepted your request", Body: "General Medicine"},
	}
	for _, e := range entries {
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("append %s: %v", e.Kind, err)
		}
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	// Newest first.
	if got[0].Kind != "accepted" || got[2].Kind != "invite" {
		t.Fatalf("order wrong: %+v", got)
	}
	if got[2].SessionID != "sess-1" {
		t.Fatalf("session id lost: %+v", got[2])
	}
}
