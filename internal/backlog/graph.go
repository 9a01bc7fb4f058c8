package backlog

import "sort"

// adjacencyLocked returns the depends_on adjacency of the arena:
// goal ID -> IDs it depends on.
func (s *Store) adjacencyLocked() map[string][]string {
	adj := make(map[string][]string, len(s.goals))
	for id, g := range s.goals {
		adj[id] = g.DependsOn
	}
	return adj
}

// detectCycle runs a depth-first search over the dependency graph and
// returns the offending cycle as a path of goal IDs (first ID repeated
// at the end), or nil if the graph is a DAG. Nodes are visited in
// sorted order so the reported cycle is deterministic.
func detectCycle(adj map[string][]string) []string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(adj))
	var stack []string

	nodes := make([]string, 0, len(adj))
	for id := range adj {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)

	var visit func(id string) []string
	visit = func(id string) []string {
		state[id] = inStack
		stack = append(stack, id)

		deps := append([]string(nil), adj[id]...)
		sort.Strings(deps)
		for _, dep := range deps {
			if _, known := adj[dep]; !known {
				continue // dangling refs are caught by validation, not here
			}
			switch state[dep] {
			case inStack:
				// Slice the cycle out of the current path.
				for i, sid := range stack {
					if sid == dep {
						cycle := append([]string(nil), stack[i:]...)
						return append(cycle, dep)
					}
				}
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, id := range nodes {
		if state[id] == unvisited {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// ExecutionOrder groups goal IDs into parallelizable waves: every goal
// in wave N depends only on goals in earlier waves. Within a wave,
// goals are ordered by (-priority, insertion order). Completed and
// skipped goals are omitted. The waves are advisory, since claiming is
// dynamic, but they are the natural rendering for dependency graphs.
func (s *Store) ExecutionOrder() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	settled := make(map[string]bool)
	remaining := make(map[string]bool)
	for _, id := range s.order {
		if s.goals[id].Status.IsTerminal() {
			settled[id] = true
		} else {
			remaining[id] = true
		}
	}

	var waves [][]string
	for len(remaining) > 0 {
		var wave []string
		for _, id := range s.order {
			if !remaining[id] {
				continue
			}
			eligible := true
			for _, dep := range s.goals[id].DependsOn {
				if remaining[dep] {
					eligible = false
					break
				}
			}
			if eligible {
				wave = append(wave, id)
			}
		}
		if len(wave) == 0 {
			// Unreachable for a validated DAG; bail rather than spin.
			break
		}
		sort.SliceStable(wave, func(i, j int) bool {
			return s.goals[wave[i]].Priority > s.goals[wave[j]].Priority
		})
		for _, id := range wave {
			settled[id] = true
			delete(remaining, id)
		}
		waves = append(waves, wave)
	}
	return waves
}

// Dependents returns the IDs of goals that list goalID in depends_on,
// in insertion order.
func (s *Store) Dependents(goalID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dependents[goalID]...)
}

// Children returns the child IDs of the given parent, in insertion order.
func (s *Store) Children(parentID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.children[parentID]...)
}
