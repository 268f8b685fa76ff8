package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := &QueryRecord{
		CaseType:   "CS",
		CaseNumber: "1234",
		FilingYear: "2023",
		ParsedData: `{"parties":[]}`,
		Status:     StatusSuccess,
	}

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if rec.ID == 0 {
		t.Error("Expected store-assigned ID, got 0")
	}
	if rec.QueryTimestamp.IsZero() {
		t.Error("Expected store-assigned timestamp, got zero value")
	}
}

func TestAppendRejectsEmptyFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  QueryRecord
	}{
		{"missing case type", QueryRecord{CaseNumber: "1", FilingYear: "2023", Status: StatusError}},
		{"missing case number", QueryRecord{CaseType: "CS", FilingYear: "2023", Status: StatusError}},
		{"missing filing year", QueryRecord{CaseType: "CS", CaseNumber: "1", Status: StatusError}},
		{"blank case type", QueryRecord{CaseType: "  ", CaseNumber: "1", FilingYear: "2023", Status: StatusError}},
		{"bad status", QueryRecord{CaseType: "CS", CaseNumber: "1", FilingYear: "2023", Status: "pending"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			if err := store.Append(ctx, &rec); err == nil {
				t.Error("Expected Append to reject record, got nil error")
			}
		})
	}

	summaries, err := store.Recent(ctx, MaxHistory)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("Expected no records after rejected appends, got %d", len(summaries))
	}
}

func TestRecentOrderingAndCap(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < MaxHistory+10; i++ {
		rec := &QueryRecord{
			CaseType:       "CS",
			CaseNumber:     fmt.Sprintf("%d", i),
			FilingYear:     "2023",
			QueryTimestamp: base.Add(time.Duration(i) * time.Minute),
			Status:         StatusSuccess,
		}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append %d returned error: %v", i, err)
		}
	}

	summaries, err := store.Recent(ctx, 1000)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}

	if len(summaries) != MaxHistory {
		t.Fatalf("Expected %d summaries, got %d", MaxHistory, len(summaries))
	}

	if summaries[0].CaseNumber != fmt.Sprintf("%d", MaxHistory+9) {
		t.Errorf("Expected newest record first, got case number %s", summaries[0].CaseNumber)
	}

	for i := 1; i < len(summaries); i++ {
		if summaries[i].QueryTimestamp.After(summaries[i-1].QueryTimestamp) {
			t.Errorf("Summaries out of order at index %d", i)
		}
	}
}

func TestRecentTieBreakByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ts := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, num := range []string{"first", "second", "third"} {
		rec := &QueryRecord{
			CaseType:       "CS",
			CaseNumber:     num,
			FilingYear:     "2023",
			QueryTimestamp: ts,
			Status:         StatusError,
		}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	summaries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}

	if len(summaries) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(summaries))
	}
	if summaries[0].CaseNumber != "third" || summaries[2].CaseNumber != "first" {
		t.Errorf("Expected insertion-order tie break, got %s, %s, %s",
			summaries[0].CaseNumber, summaries[1].CaseNumber, summaries[2].CaseNumber)
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := &QueryRecord{
			CaseType:   "CC",
			CaseNumber: fmt.Sprintf("%d", i),
			FilingYear: "2022",
			Status:     StatusSuccess,
		}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	summaries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(summaries) != 2 {
		t.Errorf("Expected 2 summaries, got %d", len(summaries))
	}
}

func TestPing(t *testing.T) {
	store := openTestStore(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping returned error: %v", err)
	}
}
