package gateway

import (
	"sort"
	"testing"
)

func sortedIDs(r *Registry) []int64 {
	ids := r.ListUserIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestRegistryRegisterAndList(t *testing.T) {
	r := NewRegistry()

	r.Register(1, "conn-a")
	r.Register(2, "conn-b")
	r.Register(3, "conn-c")

	got := sortedIDs(r)
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("ListUserIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListUserIDs() = %v, want %v", got, want)
		}
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "conn-a")
	r.Register(2, "conn-b")
	r.Register(3, "conn-c")

	r.Unregister(2)

	got := sortedIDs(r)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("after Unregister(2): ListUserIDs() = %v, want [1 3]", got)
	}
	if r.IsOnline(2) {
		t.Error("IsOnline(2) = true after unregister")
	}

	// Removing an absent user must be a no-op.
	r.Unregister(2)
	r.Unregister(99)
	if got := sortedIDs(r); len(got) != 2 {
		t.Fatalf("repeat unregister changed the registry: %v", got)
	}
}

func TestRegistryLastConnectionWins(t *testing.T) {
	r := NewRegistry()

	r.Register(5, "conn-old")
	r.Register(5, "conn-new")

	if got := len(r.ListUserIDs()); got != 1 {
		t.Fatalf("re-register created %d entries, want 1", got)
	}
	if id, ok := r.connID(5); !ok || id != "conn-new" {
		t.Errorf("connID(5) = %q, %v; want conn-new, true", id, ok)
	}

	// The disconnect of the superseded connection still evicts the entry.
	r.Unregister(5)
	if r.IsOnline(5) {
		t.Error("IsOnline(5) = true after unregister")
	}
}

func TestRegistrySnapshotIsolation(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "conn-a")

	snap := r.ListUserIDs()
	snap[0] = 999

	if !r.IsOnline(1) || r.IsOnline(999) {
		t.Error("mutating the snapshot must not affect the registry")
	}
}
