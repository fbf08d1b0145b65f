package abts

import "time"

// SearchStats accumulates observational counters over a Select call. It
// plays no role in the pruning or ordering algorithm — purely a
// diagnostic surface for a caller who wants to see how much work a
// search did.
type SearchStats struct {
	NodesVisited int
	Cutoffs      int
	DeepestDepth int
	Elapsed      time.Duration
}

func (s *SearchStats) visitNode() {
	if s == nil {
		return
	}
	s.NodesVisited++
}

func (s *SearchStats) recordCutoff() {
	if s == nil {
		return
	}
	s.Cutoffs++
}

func (s *SearchStats) noteDepth(depth int) {
	if s == nil {
		return
	}
	if depth > s.DeepestDepth {
		s.DeepestDepth = depth
	}
}

// IterationResult is what an OnDepth listener (see Bot.SetListener)
// receives after each completed deepening iteration.
type IterationResult[A any, F any] struct {
	Depth       int
	BestAction  A
	BestFitness F
	Path        Path
	Resolved    bool // every arm Complete — the tree is fully solved
	Stats       SearchStats
}

// Listener is called once per completed deepening iteration. It runs on
// the driver's own goroutine between iterations, never inside the
// evaluator's recursion, so it cannot perturb the search's own deadline
// checks.
type Listener[A any, F any] func(IterationResult[A, F])
