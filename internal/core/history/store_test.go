package history

import (
	"testing"
	"time"
)

func TestStore(t *testing.T) {
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	now := time.Now()
	id1, err := store.Add(Entry{
		FileName:  "contract-a.pdf",
		FileType:  1,
		CompanyID: "c1",
		Size:      1024,
		Success:   true,
		Response:  `{"status":"success"}`,
		Duration:  150 * time.Millisecond,
		Timestamp: now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}
	if id1 == 0 {
		t.Error("expected non-zero ID")
	}

	id2, err := store.Add(Entry{
		FileName:  "plan.png",
		FileType:  2,
		Size:      2048,
		Error:     "upload failed: 500 Internal Server Error",
		Timestamp: now,
	})
	if err != nil {
		t.Fatal(err)
	}

	entries, err := store.List(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Most recent first
	if entries[0].ID != id2 {
		t.Errorf("expected most recent first, got id %d", entries[0].ID)
	}
	if entries[1].CompanyID != "c1" || !entries[1].Success {
		t.Errorf("round trip lost fields: %+v", entries[1])
	}

	results, err := store.ListFiltered(Filter{FileName: "contract"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 search result, got %d", len(results))
	}

	failed, err := store.ListFiltered(Filter{Failed: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].FileName != "plan.png" {
		t.Errorf("failed entries = %+v", failed)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, err = store.List(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries after clear, got %d", len(entries))
	}
}

func TestStore_ListFiltered(t *testing.T) {
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	now := time.Now()
	store.Add(Entry{FileName: "a.pdf", FileType: 1, CompanyID: "c1", Success: true, Timestamp: now.Add(-3 * time.Hour)})
	store.Add(Entry{FileName: "b.pdf", FileType: 1, CompanyID: "c2", Success: true, Timestamp: now.Add(-2 * time.Hour)})
	store.Add(Entry{FileName: "c.jpg", FileType: 2, CompanyID: "c1", Timestamp: now.Add(-1 * time.Hour)})
	store.Add(Entry{FileName: "d.gif", FileType: 2, CompanyID: "c1", Success: true, Timestamp: now})

	entries, err := store.ListFiltered(Filter{FileType: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 drawing entries, got %d", len(entries))
	}

	entries, err = store.ListFiltered(Filter{CompanyID: "c1", Failed: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 failed entry for c1, got %d", len(entries))
	}

	entries, err = store.ListFiltered(Filter{Since: now.Add(-90 * time.Minute)})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 recent entries, got %d", len(entries))
	}
}

func TestStore_CountAndDelete(t *testing.T) {
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	id1, _ := store.Add(Entry{FileName: "x.pdf", FileType: 1, Timestamp: time.Now()})
	store.Add(Entry{FileName: "y.pdf", FileType: 1, Timestamp: time.Now()})

	count, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}

	if err := store.Delete(id1); err != nil {
		t.Fatal(err)
	}

	count, err = store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected count 1 after delete, got %d", count)
	}
}

func TestStore_DurationRoundTrip(t *testing.T) {
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	dur := 123456789 * time.Nanosecond
	if _, err := store.Add(Entry{FileName: "z.pdf", FileType: 1, Duration: dur}); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Duration != dur {
		t.Errorf("duration = %v, want %v", entries[0].Duration, dur)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("zero timestamp should default to now")
	}
}
