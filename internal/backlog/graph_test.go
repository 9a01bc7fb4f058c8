package backlog

import (
	"strings"
	"testing"

	"github.com/lbliii/sunwell/internal/goal"
)

func waveIndex(waves [][]string) map[string]int {
	idx := make(map[string]int)
	for i, wave := range waves {
		for _, id := range wave {
			idx[id] = i
		}
	}
	return idx
}

func TestExecutionOrderWaves(t *testing.T) {
	s := New()
	mustAdd(t, s,
		task("a"),
		task("b"),
		task("c", "a"),
		task("d", "a", "b"),
		task("e", "c", "d"),
	)

	waves := s.ExecutionOrder()
	if len(waves) != 3 {
		t.Fatalf("got %d waves, want 3: %v", len(waves), waves)
	}
	idx := waveIndex(waves)

	if idx["a"] != 0 || idx["b"] != 0 {
		t.Errorf("roots not in wave 0: %v", waves)
	}
	if idx["c"] != 1 || idx["d"] != 1 {
		t.Errorf("middle layer not in wave 1: %v", waves)
	}
	if idx["e"] != 2 {
		t.Errorf("sink not in wave 2: %v", waves)
	}
}

func TestExecutionOrderPriorityWithinWave(t *testing.T) {
	s := New()
	lo := task("lo")
	lo.Priority = 0.1
	hi := task("hi")
	hi.Priority = 0.9
	mustAdd(t, s, lo, hi)

	waves := s.ExecutionOrder()
	if len(waves) != 1 || waves[0][0] != "hi" {
		t.Errorf("waves = %v, want hi before lo", waves)
	}
}

func TestExecutionOrderOmitsSettledGoals(t *testing.T) {
	s := New()
	mustAdd(t, s, task("a"), task("b", "a"))
	mustClaim(t, s, "w")
	if err := s.Release("a", "w", goal.OutcomeSuccess, ""); err != nil {
		t.Fatal(err)
	}

	waves := s.ExecutionOrder()
	idx := waveIndex(waves)
	if _, in := idx["a"]; in {
		t.Errorf("completed goal in execution order: %v", waves)
	}
	if idx["b"] != 0 {
		t.Errorf("b should head the remaining order: %v", waves)
	}
}

func TestDependentsAndChildren(t *testing.T) {
	s := New()
	epic := &goal.Goal{ID: "e", Title: "Epic", Type: goal.TypeEpic}
	m1 := &goal.Goal{ID: "m1", Title: "M1", Type: goal.TypeMilestone, ParentID: "e"}
	m2 := &goal.Goal{ID: "m2", Title: "M2", Type: goal.TypeMilestone, ParentID: "e", DependsOn: []string{"m1"}}
	mustAdd(t, s, epic, m1, m2)

	if got := s.Children("e"); len(got) != 2 || got[0] != "m1" || got[1] != "m2" {
		t.Errorf("children = %v, want [m1 m2]", got)
	}
	if got := s.Dependents("m1"); len(got) != 1 || got[0] != "m2" {
		t.Errorf("dependents = %v, want [m2]", got)
	}
	if got := s.Dependents("m2"); len(got) != 0 {
		t.Errorf("dependents of sink = %v, want none", got)
	}
}

func TestDetectCycleReportsPath(t *testing.T) {
	adj := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
		"d": nil,
	}
	cycle := detectCycle(adj)
	if cycle == nil {
		t.Fatal("cycle not detected")
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("cycle %v should close on itself", cycle)
	}

	if got := detectCycle(map[string][]string{"a": {"b"}, "b": nil}); got != nil {
		t.Errorf("false cycle %v in a DAG", got)
	}
}

func TestDetectCycleIgnoresDanglingRefs(t *testing.T) {
	adj := map[string][]string{"a": {"ghost"}}
	if got := detectCycle(adj); got != nil {
		t.Errorf("dangling ref reported as cycle: %v", got)
	}
}

func TestMermaidExport(t *testing.T) {
	s := New()
	epic := &goal.Goal{ID: "e", Title: "Ship auth", Type: goal.TypeEpic}
	ms := &goal.Goal{ID: "m-1", Title: "Login flow", Type: goal.TypeMilestone, ParentID: "e"}
	t1 := &goal.Goal{ID: "t-1", Title: `Add "login" page`, Type: goal.TypeTask, ParentID: "m-1"}
	free := task("free", "t-1")
	mustAdd(t, s, epic, ms, t1, free)

	out := s.Mermaid()
	for _, want := range []string{
		"graph TD",
		"subgraph e_group",
		"t_1 --> free",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"login"`) {
		t.Errorf("quotes not escaped:\n%s", out)
	}
}
