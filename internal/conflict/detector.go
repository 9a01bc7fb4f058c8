// Package conflict detects resource collisions between concurrently
// running goals.
//
// Every goal declares the resources it will write in its modifies set.
// Two goals conflict iff those sets intersect. The detector tracks the
// declared resources of all in-flight goals; the claim scheduler
// consults it before handing out a lease so that two conflicting goals
// are never in progress at the same time.
//
// Conflicts are a concurrency constraint only. They never affect
// dependency ordering or readiness: a ready goal that conflicts with an
// in-flight one stays visible in the ready set and becomes claimable as
// soon as the conflict clears.
package conflict

import (
	"sort"
	"sync"
	"time"
)

// ResourceConflict describes a resource claimed by multiple goals.
type ResourceConflict struct {
	// Resource is the declared resource name.
	Resource string

	// GoalIDs are the goals contending for the resource.
	GoalIDs []string

	// DetectedAt is when the contention was last observed.
	DetectedAt time.Time
}

// Detector tracks the declared write-resources of in-flight goals.
// All methods are safe for concurrent use.
type Detector struct {
	mu sync.RWMutex

	// resource name -> set of holding goal IDs
	holders map[string]map[string]struct{}

	// goal ID -> declared resources
	resources map[string][]string

	// Callback invoked when a registration creates contention.
	onConflict func([]ResourceConflict)

	now func() time.Time
}

// New creates a Detector with no registered goals.
func New() *Detector {
	return &Detector{
		holders:   make(map[string]map[string]struct{}),
		resources: make(map[string][]string),
		now:       time.Now,
	}
}

// SetConflictCallback sets the callback invoked when a registration
// introduces contention on a resource.
func (d *Detector) SetConflictCallback(cb func([]ResourceConflict)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onConflict = cb
}

// HasConflict reports whether the given modifies set intersects any
// resource held by a registered goal other than excludeID.
func (d *Detector) HasConflict(excludeID string, modifies []string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, res := range modifies {
		for id := range d.holders[res] {
			if id != excludeID {
				return true
			}
		}
	}
	return false
}

// ConflictsWith returns the IDs of registered goals whose resources
// intersect the given modifies set, excluding excludeID.
func (d *Detector) ConflictsWith(excludeID string, modifies []string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, res := range modifies {
		for id := range d.holders[res] {
			if id == excludeID {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// Register records a goal as in flight with its declared resources.
// Registering a goal that is already registered replaces its resources.
func (d *Detector) Register(goalID string, modifies []string) {
	d.mu.Lock()

	d.unregisterLocked(goalID)
	d.resources[goalID] = append([]string(nil), modifies...)
	for _, res := range modifies {
		if d.holders[res] == nil {
			d.holders[res] = make(map[string]struct{})
		}
		d.holders[res][goalID] = struct{}{}
	}

	conflicts := d.currentConflictsLocked()
	cb := d.onConflict
	d.mu.Unlock()

	if cb != nil && len(conflicts) > 0 {
		cb(conflicts)
	}
}

// Unregister removes a goal's resources from tracking. Called when the
// goal leaves the in-progress state for any reason.
func (d *Detector) Unregister(goalID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unregisterLocked(goalID)
}

func (d *Detector) unregisterLocked(goalID string) {
	for _, res := range d.resources[goalID] {
		delete(d.holders[res], goalID)
		if len(d.holders[res]) == 0 {
			delete(d.holders, res)
		}
	}
	delete(d.resources, goalID)
}

// Conflicts returns all resources currently held by more than one goal.
// The claim path prevents this for scheduler-managed goals, so a
// non-empty result means claims were registered out of band.
func (d *Detector) Conflicts() []ResourceConflict {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currentConflictsLocked()
}

func (d *Detector) currentConflictsLocked() []ResourceConflict {
	var out []ResourceConflict
	for res, ids := range d.holders {
		if len(ids) < 2 {
			continue
		}
		goalIDs := make([]string, 0, len(ids))
		for id := range ids {
			goalIDs = append(goalIDs, id)
		}
		sort.Strings(goalIDs)
		out = append(out, ResourceConflict{
			Resource:   res,
			GoalIDs:    goalIDs,
			DetectedAt: d.now(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}

// Registered returns the number of goals currently tracked.
func (d *Detector) Registered() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.resources)
}

// Overlaps reports whether two modifies sets intersect.
func Overlaps(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, res := range a {
		set[res] = struct{}{}
	}
	for _, res := range b {
		if _, ok := set[res]; ok {
			return true
		}
	}
	return false
}
