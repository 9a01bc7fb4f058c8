// Package backlog implements the goal store, dependency resolver, and
// hierarchy aggregation for the backlog engine.
//
// The core type is [Store], a single owned arena of goals indexed by
// ID. All components operate on IDs into this arena; the store hands
// out deep copies, never internal pointers. Every mutation is
// serialized behind one mutex and follows validate-then-commit: a
// rejected mutation (cycle, unknown reference, illegal transition)
// leaves the store byte-for-byte unchanged.
//
// After each committed mutation the resolver re-evaluates the whole
// graph: pending goals whose dependencies are completed and whose
// required artifacts are produced become ready; goals downstream of a
// failure become blocked; goals downstream of a skip become skipped.
// Claiming selects from the ready set in (-priority, insertion order),
// skipping goals whose modifies sets collide with in-flight work.
//
// Persistence is external: the store exports its goals via [Store.Export]
// and is rebuilt with [NewFromGoals]; callers decide when to flush.
//
// Usage:
//
//	store := backlog.New()
//	if err := store.Add(g); err != nil { ... }
//
//	claimed, err := store.Claim("worker-1", 15*time.Minute)
//	if claimed != nil {
//	    // ... execute ...
//	    err = store.Release(claimed.ID, "worker-1", goal.OutcomeSuccess, "")
//	}
package backlog
