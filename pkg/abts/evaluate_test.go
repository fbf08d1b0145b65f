package abts

import (
	"math/rand"
	"testing"
	"time"
)

func evalFull(t *testing.T, root *node, depth int) Outcome[intFitness] {
	t.Helper()
	state := newTreeState(root)
	stats := &SearchStats{}
	return evaluate[*treeState, int, string, intFitness](
		state, state.Turn(), botRole, depth, fitnessMin, fitnessMax, time.Now().Add(time.Hour), stats,
	)
}

// Two flat sibling leaves: the evaluator must pick the higher-valued one
// and report a single-ply path down to it.
func TestEvaluatePicksHigherLeaf(t *testing.T) {
	root := branch(botRole, 0, leaf(botRole, 12), leaf(botRole, 7))
	out := evalFull(t, root, 5)

	if !out.Exact() {
		t.Fatalf("expected Exact, got Cancelled=%v", out.Cancelled())
	}
	if out.Value() != 12 {
		t.Fatalf("value = %d, want 12", out.Value())
	}
	if len(out.Path()) == 0 || out.Path()[0] != 0 {
		t.Fatalf("path = %v, want [0, ...]", out.Path())
	}
}

// A branch whose own intrinsic value (12) is higher than a flat sibling
// leaf (7) but whose only child resolves lower (6): full expansion must
// look past the shallow intrinsic value and pick the sibling leaf instead.
func TestEvaluateLooksPastShallowBranchValue(t *testing.T) {
	root := branch(botRole, 0,
		branch(botRole, 12, leaf(botRole, 6)),
		leaf(botRole, 7),
	)
	out := evalFull(t, root, 5)

	if !out.Exact() {
		t.Fatalf("expected Exact")
	}
	if out.Value() != 7 {
		t.Fatalf("value = %d, want 7", out.Value())
	}
	if len(out.Path()) == 0 || out.Path()[0] != 1 {
		t.Fatalf("path = %v, want [1]", out.Path())
	}
}

// An opponent-controlled branch minimizes its children (3 over 7), so its
// resolved value (3) loses to a flat sibling leaf (6): the evaluator must
// pick the sibling rather than the branch's higher-looking child values.
func TestEvaluateMinimizesOpponentBranch(t *testing.T) {
	root := branch(botRole, 0,
		branch(oppRole, 12, leaf(botRole, 3), leaf(botRole, 7)),
		leaf(botRole, 6),
	)
	out := evalFull(t, root, 5)

	if !out.Exact() {
		t.Fatalf("expected Exact")
	}
	if out.Value() != 6 {
		t.Fatalf("value = %d, want 6", out.Value())
	}
	if len(out.Path()) == 0 || out.Path()[0] != 1 {
		t.Fatalf("path = %v, want [1]", out.Path())
	}
}

// Once the root has a flat leaf worth 6, the opponent-controlled second
// arm only needs to prove it can't beat 6: as soon as its first child
// (3) drops below that bound, the arm is bounded and its remaining
// sibling leaf must never be visited.
func TestEvaluateBetaCutoffSkipsPrunedLeaf(t *testing.T) {
	root := branch(botRole, 0,
		leaf(botRole, 6),
		branch(oppRole, 12, leaf(botRole, 3), leaf(botRole, 7)),
	)

	state := newTreeState(root)
	stats := &SearchStats{}
	out := evaluate[*treeState, int, string, intFitness](
		state, state.Turn(), botRole, 3, fitnessMin, fitnessMax, time.Now().Add(time.Hour), stats,
	)

	if out.Value() != 6 {
		t.Fatalf("value = %d, want 6", out.Value())
	}
	if len(out.Path()) == 0 || out.Path()[0] != 0 {
		t.Fatalf("path = %v, want [0, ...]", out.Path())
	}

	// The a7 leaf would raise NodesVisited to 5 (root, a6, o12, a3, a7); a
	// sound beta-cutoff must stop at 4.
	if stats.NodesVisited != 4 {
		t.Fatalf("nodes visited = %d, want 4 (a7 must be pruned)", stats.NodesVisited)
	}
	if stats.Cutoffs == 0 {
		t.Fatalf("expected at least one recorded cutoff")
	}
}

// Across many random trees, the pruned evaluator must choose the same
// root action and value as an independent brute-force minimax: pruning
// must never change the answer, only how much of the tree gets visited.
func TestEvaluateCutoffSoundness(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		root := randomTree(r, 4, 3, botRole)
		if len(root.children) == 0 {
			continue // degenerate root, nothing to choose between
		}

		wantValue, wantPath := naiveMinimax(newTreeState(root), root.active, botRole)

		state := newTreeState(root)
		stats := &SearchStats{}
		got := evaluate[*treeState, int, string, intFitness](
			state, state.Turn(), botRole, 4, fitnessMin, fitnessMax, time.Now().Add(time.Hour), stats,
		)

		// Every leaf lies within depth 4, so the outcome is Exact exactly
		// when no cutoff was taken anywhere; any cutoff bounds the root.
		if got.Exact() != (stats.Cutoffs == 0) {
			t.Fatalf("tree %d: Exact = %v with %d cutoffs, want Exact only when no cutoff was taken", i, got.Exact(), stats.Cutoffs)
		}
		if got.Value() != wantValue {
			t.Fatalf("tree %d: pruned value = %d, naive value = %d", i, got.Value(), wantValue)
		}
		if len(got.Path()) == 0 || len(wantPath) == 0 || got.Path()[0] != wantPath[0] {
			t.Fatalf("tree %d: pruned chose root action %v, naive chose %v", i, got.Path(), wantPath)
		}
	}
}

// Running evaluate twice on an equivalent state with the same window must
// yield an identical outcome — nothing in the algorithm depends on
// anything but the state and the search window.
func TestEvaluateDeterministic(t *testing.T) {
	root := branch(botRole, 0,
		branch(oppRole, 12, leaf(botRole, 3), leaf(botRole, 7)),
		leaf(botRole, 6),
	)

	first := evalFull(t, root, 5)
	second := evalFull(t, root, 5)

	if first.Value() != second.Value() {
		t.Fatalf("value differs across runs: %d vs %d", first.Value(), second.Value())
	}
	if len(first.Path()) != len(second.Path()) {
		t.Fatalf("path length differs across runs: %v vs %v", first.Path(), second.Path())
	}
	for i := range first.Path() {
		if first.Path()[i] != second.Path()[i] {
			t.Fatalf("path differs across runs: %v vs %v", first.Path(), second.Path())
		}
	}
}

// Cancellation: a deadline that has already elapsed before entry must
// short-circuit to Cancelled without materializing a value.
func TestEvaluateCancelledDeadline(t *testing.T) {
	root := branch(botRole, 0, leaf(botRole, 12), leaf(botRole, 7))
	state := newTreeState(root)
	stats := &SearchStats{}

	out := evaluate[*treeState, int, string, intFitness](
		state, state.Turn(), botRole, 5, fitnessMin, fitnessMax, time.Now().Add(-time.Second), stats,
	)
	if !out.Cancelled() {
		t.Fatalf("expected Cancelled with an already-elapsed deadline")
	}
}
