package goal

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusReady, true},
		{StatusReady, StatusPending, true},
		{StatusReady, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusFailed, true},
		{StatusInProgress, StatusPending, true}, // lease reclaim
		{StatusBlocked, StatusPending, true},    // blocking dep retried
		{StatusFailed, StatusPending, true},     // explicit retry
		{StatusPending, StatusSkipped, true},

		{StatusPending, StatusInProgress, false}, // must pass through ready
		{StatusPending, StatusCompleted, false},
		{StatusCompleted, StatusPending, false}, // terminal
		{StatusCompleted, StatusReady, false},
		{StatusSkipped, StatusPending, false}, // terminal
		{StatusFailed, StatusReady, false},    // retry goes via pending
		{StatusReady, StatusCompleted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusSkipped} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	// Failed stays non-terminal: it can be retried back to pending.
	for _, s := range []Status{StatusPending, StatusReady, StatusInProgress, StatusBlocked, StatusFailed} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}

	if !StatusReady.IsClaimable() {
		t.Error("ready should be claimable")
	}
	for _, s := range []Status{StatusPending, StatusInProgress, StatusBlocked, StatusCompleted} {
		if s.IsClaimable() {
			t.Errorf("%s should not be claimable", s)
		}
	}
}

func TestOutcomeStatus(t *testing.T) {
	if OutcomeSuccess.Status() != StatusCompleted {
		t.Error("success should map to completed")
	}
	if OutcomeFailure.Status() != StatusFailed {
		t.Error("failure should map to failed")
	}
	if OutcomeSkip.Status() != StatusSkipped {
		t.Error("skip should map to skipped")
	}
	if Outcome("partial").IsValid() {
		t.Error("unknown outcome accepted")
	}
}

func TestCanParent(t *testing.T) {
	if !TypeEpic.CanParent(TypeMilestone) || !TypeMilestone.CanParent(TypeTask) {
		t.Error("epic ⊃ milestone ⊃ task chain broken")
	}
	for _, bad := range []struct{ parent, child Type }{
		{TypeEpic, TypeTask},
		{TypeEpic, TypeEpic},
		{TypeMilestone, TypeMilestone},
		{TypeTask, TypeTask},
		{TypeTask, TypeMilestone},
	} {
		if bad.parent.CanParent(bad.child) {
			t.Errorf("%s should not parent %s", bad.parent, bad.child)
		}
	}
}

func TestClaimExpired(t *testing.T) {
	now := time.Now()
	c := &Claim{WorkerID: "w", ClaimedAt: now, ExpiresAt: now.Add(time.Minute)}

	if c.Expired(now) {
		t.Error("fresh claim reported expired")
	}
	if c.Expired(now.Add(time.Minute)) {
		t.Error("claim expired exactly at the boundary")
	}
	if !c.Expired(now.Add(time.Minute + time.Nanosecond)) {
		t.Error("lapsed claim not reported expired")
	}
}

func TestCloneIsDeep(t *testing.T) {
	done := time.Now()
	g := &Goal{
		ID:          "g",
		Title:       "original",
		DependsOn:   []string{"a"},
		Requires:    []string{"r"},
		Produces:    []string{"p"},
		Modifies:    []string{"m"},
		Claim:       &Claim{WorkerID: "w"},
		CompletedAt: &done,
	}

	cp := g.Clone()
	cp.Title = "mutated"
	cp.DependsOn[0] = "z"
	cp.Requires = append(cp.Requires, "extra")
	cp.Claim.WorkerID = "other"
	*cp.CompletedAt = done.Add(time.Hour)

	if g.Title != "original" {
		t.Error("title aliased")
	}
	if g.DependsOn[0] != "a" {
		t.Error("depends_on aliased")
	}
	if len(g.Requires) != 1 {
		t.Error("requires aliased")
	}
	if g.Claim.WorkerID != "w" {
		t.Error("claim aliased")
	}
	if !g.CompletedAt.Equal(done) {
		t.Error("completed_at aliased")
	}
}

func TestClaimedBy(t *testing.T) {
	g := &Goal{ID: "g"}
	if g.ClaimedBy() != "" {
		t.Errorf("unclaimed goal claimed by %q", g.ClaimedBy())
	}
	g.Claim = &Claim{WorkerID: "w"}
	if g.ClaimedBy() != "w" {
		t.Errorf("claimed by %q, want w", g.ClaimedBy())
	}
}
