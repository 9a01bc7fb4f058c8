package planner

import "testing"

const planText = `Here is the decomposition you asked for.

MILESTONE 1: Core data model
PRODUCES: goal types, status machine
REQUIRES: none
DESCRIPTION: Define the goal entity and its lifecycle transitions.

MILESTONE 2: Dependency resolver
PRODUCES: readiness engine
REQUIRES: 1
DESCRIPTION: Compute ready/blocked/skipped from the committed graph.

Some commentary in between that should be ignored.

MILESTONE 3: Worker protocol
PRODUCES: claim API
REQUIRES: 1, 2
DESCRIPTION: Claim and release with leases.
`

func TestParseMilestones(t *testing.T) {
	ms := ParseMilestones(planText)
	if len(ms) != 3 {
		t.Fatalf("parsed %d milestones, want 3", len(ms))
	}

	first := ms[0]
	if first.Index != 1 {
		t.Errorf("index = %d, want 1", first.Index)
	}
	if first.Title != "Core data model" {
		t.Errorf("title = %q", first.Title)
	}
	if len(first.Produces) != 2 || first.Produces[0] != "goal types" || first.Produces[1] != "status machine" {
		t.Errorf("produces = %v", first.Produces)
	}
	if len(first.Requires) != 0 {
		t.Errorf("requires = %v, want none", first.Requires)
	}
	if first.Description != "Define the goal entity and its lifecycle transitions." {
		t.Errorf("description = %q", first.Description)
	}

	third := ms[2]
	if len(third.Requires) != 2 || third.Requires[0] != 1 || third.Requires[1] != 2 {
		t.Errorf("requires = %v, want [1 2]", third.Requires)
	}
}

func TestParseMilestonesCaseInsensitive(t *testing.T) {
	ms := ParseMilestones("milestone 1: Lowercase header\nproduces: thing\nrequires: NONE\n")
	if len(ms) != 1 {
		t.Fatalf("parsed %d milestones, want 1", len(ms))
	}
	if ms[0].Title != "Lowercase header" {
		t.Errorf("title = %q", ms[0].Title)
	}
	if len(ms[0].Produces) != 1 || ms[0].Produces[0] != "thing" {
		t.Errorf("produces = %v", ms[0].Produces)
	}
	if len(ms[0].Requires) != 0 {
		t.Errorf("requires = %v, want none", ms[0].Requires)
	}
}

func TestParseMilestonesNoBlocks(t *testing.T) {
	if ms := ParseMilestones("just prose, no structure"); len(ms) != 0 {
		t.Errorf("parsed %d milestones from prose", len(ms))
	}
	if ms := ParseMilestones(""); len(ms) != 0 {
		t.Errorf("parsed %d milestones from empty input", len(ms))
	}
}

func TestParseMilestonesSkipsEmptyTitle(t *testing.T) {
	text := "MILESTONE 1:\n\nMILESTONE 2: Real one\nREQUIRES: none\n"
	ms := ParseMilestones(text)
	if len(ms) != 1 {
		t.Fatalf("parsed %d milestones, want 1 (empty title skipped)", len(ms))
	}
	if ms[0].Index != 2 {
		t.Errorf("kept index %d, want 2", ms[0].Index)
	}
}

func TestParseMilestonesDescriptionStopsAtBlankLine(t *testing.T) {
	text := "MILESTONE 1: Title\nDESCRIPTION: First paragraph only.\n\nTrailing prose.\n"
	ms := ParseMilestones(text)
	if len(ms) != 1 {
		t.Fatal("block not parsed")
	}
	if ms[0].Description != "First paragraph only." {
		t.Errorf("description = %q", ms[0].Description)
	}
}
