package transport

import (
	"context"
	"path/filepath"
	"testing"
)

func TestJournalRecordAndRecent(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	entries := []JournalEntry{
		{CorrelationID: "c-1", Action: "SELECT_PROJECT", Endpoint: "/api/dispatch", Outcome: "success"},
		{CorrelationID: "c-2", Action: "FILL_PROMPT", Endpoint: "/api/dispatch", Outcome: "failure", Detail: "timeout"},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries len = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].CorrelationID != "c-2" || got[1].CorrelationID != "c-1" {
		t.Errorf("order = %q, %q", got[0].CorrelationID, got[1].CorrelationID)
	}
	if got[0].Detail != "timeout" {
		t.Errorf("detail = %q", got[0].Detail)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestJournalRecentLimit(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := j.Record(ctx, JournalEntry{CorrelationID: "c", Action: "GET_RESPONSE", Endpoint: "/api/dispatch", Outcome: "success"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("entries len = %d, want 3", len(got))
	}
}
