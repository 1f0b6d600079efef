package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/timebox/internal/store"
	"github.com/nhle/timebox/tests/testutil"
)

func TestEnsureDefinitionIsStable(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, created, err := s.EnsureDefinition(ctx, "act-1", "stretch")
	if err != nil {
		t.Fatalf("EnsureDefinition: %v", err)
	}
	if !created || id == "" {
		t.Fatalf("first ensure: id=%q created=%v", id, created)
	}

	again, created, err := s.EnsureDefinition(ctx, "act-1", "stretch")
	if err != nil {
		t.Fatalf("EnsureDefinition again: %v", err)
	}
	if created || again != id {
		t.Fatalf("second ensure: id=%q created=%v, want %q/false", again, created, id)
	}

	// Same task name under another activity is a distinct definition.
	other, created, err := s.EnsureDefinition(ctx, "act-2", "stretch")
	if err != nil {
		t.Fatalf("EnsureDefinition other activity: %v", err)
	}
	if !created || other == id {
		t.Fatal("definitions must be scoped per activity")
	}
}

func TestEntriesRequireDefinition(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := s.InsertEntryIfAbsent(ctx, "ghost", "2025-11-18", now); !errors.Is(err, store.ErrUnknownTask) {
		t.Fatalf("insert without definition: got %v, want ErrUnknownTask", err)
	}
	if err := s.SetDone(ctx, "ghost", "2025-11-18", true, now); !errors.Is(err, store.ErrUnknownTask) {
		t.Fatalf("set done without definition: got %v, want ErrUnknownTask", err)
	}
	if _, err := s.GetDefinition(ctx, "ghost"); !errors.Is(err, store.ErrUnknownTask) {
		t.Fatalf("get unknown definition: got %v, want ErrUnknownTask", err)
	}
}

func TestGetEntryAbsentIsNil(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, _, err := s.EnsureDefinition(ctx, "act-1", "journal")
	if err != nil {
		t.Fatalf("EnsureDefinition: %v", err)
	}

	entry, err := s.GetEntry(ctx, id, "2025-11-18")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if entry != nil {
		t.Fatalf("absent entry = %+v, want nil", entry)
	}
}

func TestDeleteDefinitionCascades(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Now()

	id, _, err := s.EnsureDefinition(ctx, "act-1", "plan day")
	if err != nil {
		t.Fatalf("EnsureDefinition: %v", err)
	}
	if _, err := s.InsertEntryIfAbsent(ctx, id, "2025-11-18", now); err != nil {
		t.Fatalf("InsertEntryIfAbsent: %v", err)
	}

	if err := s.DeleteDefinition(ctx, id); err != nil {
		t.Fatalf("DeleteDefinition: %v", err)
	}

	entries, err := s.EntriesForDate(ctx, "2025-11-18")
	if err != nil {
		t.Fatalf("EntriesForDate: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries survived cascade: %+v", entries)
	}

	if err := s.DeleteDefinition(ctx, id); !errors.Is(err, store.ErrUnknownTask) {
		t.Fatalf("double delete: got %v, want ErrUnknownTask", err)
	}
}

func TestSetDoneUpserts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Now()

	id, _, err := s.EnsureDefinition(ctx, "act-1", "habit")
	if err != nil {
		t.Fatalf("EnsureDefinition: %v", err)
	}

	// Upsert with no prior entry creates one.
	if err := s.SetDone(ctx, id, "2025-11-18", true, now); err != nil {
		t.Fatalf("SetDone: %v", err)
	}
	entry, err := s.GetEntry(ctx, id, "2025-11-18")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if entry == nil || !entry.Done {
		t.Fatalf("entry = %+v, want done", entry)
	}

	// The daily ensure never clobbers an existing state.
	inserted, err := s.InsertEntryIfAbsent(ctx, id, "2025-11-18", now)
	if err != nil {
		t.Fatalf("InsertEntryIfAbsent: %v", err)
	}
	if inserted {
		t.Fatal("insert-if-absent replaced an existing entry")
	}
	entry, err = s.GetEntry(ctx, id, "2025-11-18")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if !entry.Done {
		t.Fatal("done state lost after insert-if-absent")
	}

	// Toggling back down.
	if err := s.SetDone(ctx, id, "2025-11-18", false, now.Add(time.Minute)); err != nil {
		t.Fatalf("SetDone toggle: %v", err)
	}
	entry, err = s.GetEntry(ctx, id, "2025-11-18")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if entry.Done {
		t.Fatal("entry still done after toggle")
	}
}
