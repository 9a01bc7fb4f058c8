package conflict

import (
	"sync"
	"testing"
)

func TestHasConflict(t *testing.T) {
	d := New()
	d.Register("g1", []string{"internal/auth", "cmd"})

	if !d.HasConflict("g2", []string{"internal/auth"}) {
		t.Error("overlapping set not detected")
	}
	if d.HasConflict("g2", []string{"docs"}) {
		t.Error("disjoint set reported as conflict")
	}
	if d.HasConflict("g1", []string{"internal/auth"}) {
		t.Error("goal conflicts with itself")
	}
	if d.HasConflict("g2", nil) {
		t.Error("empty modifies set conflicts")
	}
}

func TestConflictsWith(t *testing.T) {
	d := New()
	d.Register("g1", []string{"a"})
	d.Register("g2", []string{"a", "b"})

	ids := d.ConflictsWith("g3", []string{"a"})
	if len(ids) != 2 || ids[0] != "g1" || ids[1] != "g2" {
		t.Errorf("conflicts = %v, want [g1 g2]", ids)
	}
	if ids := d.ConflictsWith("g1", []string{"b"}); len(ids) != 1 || ids[0] != "g2" {
		t.Errorf("conflicts = %v, want [g2]", ids)
	}
}

func TestUnregisterClearsResources(t *testing.T) {
	d := New()
	d.Register("g1", []string{"a"})
	d.Unregister("g1")

	if d.HasConflict("g2", []string{"a"}) {
		t.Error("unregistered goal still holds resources")
	}
	if d.Registered() != 0 {
		t.Errorf("registered = %d, want 0", d.Registered())
	}

	// Unregistering twice is a no-op.
	d.Unregister("g1")
}

func TestReregisterReplacesResources(t *testing.T) {
	d := New()
	d.Register("g1", []string{"a"})
	d.Register("g1", []string{"b"})

	if d.HasConflict("g2", []string{"a"}) {
		t.Error("stale resource survived re-registration")
	}
	if !d.HasConflict("g2", []string{"b"}) {
		t.Error("new resource not registered")
	}
}

func TestConflictCallback(t *testing.T) {
	d := New()

	var got []ResourceConflict
	d.SetConflictCallback(func(cs []ResourceConflict) { got = cs })

	d.Register("g1", []string{"a"})
	if len(got) != 0 {
		t.Fatalf("callback fired without contention: %v", got)
	}

	d.Register("g2", []string{"a"})
	if len(got) != 1 || got[0].Resource != "a" {
		t.Fatalf("conflicts = %v, want contention on a", got)
	}
	if len(got[0].GoalIDs) != 2 {
		t.Errorf("contenders = %v, want both goals", got[0].GoalIDs)
	}
}

func TestOverlaps(t *testing.T) {
	if !Overlaps([]string{"a", "b"}, []string{"b", "c"}) {
		t.Error("intersecting sets not detected")
	}
	if Overlaps([]string{"a"}, []string{"b"}) {
		t.Error("disjoint sets detected")
	}
	if Overlaps(nil, []string{"a"}) || Overlaps([]string{"a"}, nil) {
		t.Error("empty set overlaps")
	}
}

func TestDetectorConcurrency(t *testing.T) {
	d := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			for j := 0; j < 100; j++ {
				d.Register(id, []string{"shared", id})
				d.HasConflict(id, []string{"shared"})
				d.Conflicts()
				d.Unregister(id)
			}
		}(i)
	}
	wg.Wait()

	if d.Registered() != 0 {
		t.Errorf("registered = %d after all unregistered", d.Registered())
	}
}
