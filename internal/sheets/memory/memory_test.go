package memory

import (
	"context"
	"sync"
	"testing"

	"safisha/internal/sheets"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := New(sheets.Entry{EntryID: "seed"})

	ref, err := s.AppendEntry(context.Background(), sheets.Entry{EntryID: "1", Amount: "500"})
	if err != nil || ref != "mem:3" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	got, err := s.ListEntries(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("unexpected list: %v err=%v", got, err)
	}
	if got[1].Priority != sheets.DefaultPriority {
		t.Fatalf("expected default priority, got %q", got[1].Priority)
	}

	got[0].EntryID = "mutated"
	again, _ := s.ListEntries(context.Background())
	if again[0].EntryID != "seed" {
		t.Fatal("ListEntries must return a copy")
	}
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AppendEntry(context.Background(), sheets.Entry{})
		}()
	}
	wg.Wait()
	if s.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", s.Len())
	}
}
