package abts

import "slices"

// armStatus distinguishes a fully resolved arm from one that was only
// bounded during its last evaluation.
type armStatus uint8

const (
	statusPartial armStatus = iota
	statusComplete
)

// Arm is a top-level child of the root. Once Complete, its status, value
// and path are frozen for the remainder of the select call.
type Arm[A any, F Fitness[F]] struct {
	Index    int
	Action   A
	status   armStatus
	value    F    // meaningful only when status == statusComplete
	upper    F    // meaningful only when status == statusPartial
	bestPath Path // principal variation found so far within this arm
}

// Complete reports whether this arm's exact minimax value is known.
func (a *Arm[A, F]) Complete() bool { return a.status == statusComplete }

// Value returns the arm's exact minimax value. Only meaningful if Complete.
func (a *Arm[A, F]) Value() F { return a.value }

// Upper returns the arm's proven upper bound. Only meaningful if !Complete.
func (a *Arm[A, F]) Upper() F { return a.upper }

// BestPath returns the best variation found within this arm so far.
func (a *Arm[A, F]) BestPath() Path { return a.bestPath }

// score is what iteration ordering sorts by: a Complete arm's Value, or a
// Partial arm's Upper.
func (a *Arm[A, F]) score() F {
	if a.Complete() {
		return a.value
	}
	return a.upper
}

// armStore holds one Arm per root action, plus the running "best
// completed" floor used as next iteration's initial alpha.
type armStore[A any, F Fitness[F]] struct {
	arms          []*Arm[A, F] // indexed by Index, i.e. root action order
	bestCompleted F
	haveCompleted bool
	extrema       F // any value of F, used only to reach Min()/Max()
}

// newArmStore seeds a fresh store, one Partial{upper: MAX} arm per root
// action.
func newArmStore[A any, F Fitness[F]](actions []A, extrema F) *armStore[A, F] {
	arms := make([]*Arm[A, F], len(actions))
	for i, action := range actions {
		arms[i] = &Arm[A, F]{
			Index:  i,
			Action: action,
			status: statusPartial,
			upper:  extrema.Max(),
		}
	}
	return &armStore[A, F]{
		arms:          arms,
		bestCompleted: extrema.Min(),
		extrema:       extrema,
	}
}

// carryForward builds the next iteration's store, copying every arm's
// current status verbatim; the deepening loop then overwrites the arms it
// actually retests via addComplete/addPartial.
func (s *armStore[A, F]) carryForward() *armStore[A, F] {
	next := &armStore[A, F]{
		arms:          make([]*Arm[A, F], len(s.arms)),
		bestCompleted: s.bestCompleted,
		haveCompleted: s.haveCompleted,
		extrema:       s.extrema,
	}
	for i, arm := range s.arms {
		clone := *arm
		clone.bestPath = arm.bestPath.clone()
		next.arms[i] = &clone
	}
	return next
}

func (s *armStore[A, F]) len() int { return len(s.arms) }

func (s *armStore[A, F]) arm(index int) *Arm[A, F] { return s.arms[index] }

// initialAlpha is the distinguished best-completed value, or MIN if no arm
// has completed yet.
func (s *armStore[A, F]) initialAlpha() F {
	return s.bestCompleted
}

// shouldRetest reports whether arm needs re-evaluation at the next depth.
// A Complete arm never needs retesting (its value is depth-independent);
// a Partial arm needs retesting only if its upper bound could still beat
// the current best-completed value.
func (s *armStore[A, F]) shouldRetest(arm *Arm[A, F]) bool {
	if arm.Complete() {
		return false
	}
	return greater(arm.upper, s.initialAlpha())
}

// addComplete records index as fully resolved with the given exact value
// and root-relative principal variation, raising the best-completed floor
// if value improves on it. path is the full line from this arm's root
// action down to the resolved leaf, not just the arm's own index — a
// Complete arm several plies deep still owns a multi-ply PV.
func (s *armStore[A, F]) addComplete(index int, value F, path Path) {
	s.arms[index] = &Arm[A, F]{
		Index:    index,
		Action:   s.arms[index].Action,
		status:   statusComplete,
		value:    value,
		bestPath: path,
	}
	if !s.haveCompleted || greater(value, s.bestCompleted) {
		s.bestCompleted = value
		s.haveCompleted = true
	}
}

// addPartial records index as still bounded, with the given upper bound
// and best variation found before the cutoff/depth limit. upper must be
// no greater than any previously recorded upper for the same index;
// callers only ever pass a value proven at a deeper search than the last,
// so this holds by construction.
func (s *armStore[A, F]) addPartial(index int, upper F, path Path) {
	s.arms[index] = &Arm[A, F]{
		Index:    index,
		Action:   s.arms[index].Action,
		status:   statusPartial,
		upper:    upper,
		bestPath: path,
	}
}

// allComplete reports whether every arm in the store is Complete, meaning
// the game tree is fully resolved.
func (s *armStore[A, F]) allComplete() bool {
	for _, arm := range s.arms {
		if !arm.Complete() {
			return false
		}
	}
	return true
}

// iterOrder returns arms in the order the evaluator should try them:
// Partial arms first by descending upper, then Complete arms by
// descending value.
func (s *armStore[A, F]) iterOrder() []*Arm[A, F] {
	ordered := make([]*Arm[A, F], len(s.arms))
	copy(ordered, s.arms)
	slices.SortFunc(ordered, func(a, b *Arm[A, F]) int {
		if a.Complete() != b.Complete() {
			if a.Complete() {
				return 1 // partial arms sort first
			}
			return -1
		}
		return b.score().Compare(a.score()) // descending
	})
	return ordered
}

// best returns the arm with the highest score (Value for Complete, Upper
// for Partial), Complete winning ties. Returns nil if the store is empty.
func (s *armStore[A, F]) best() *Arm[A, F] {
	var winner *Arm[A, F]
	for _, arm := range s.arms {
		if winner == nil {
			winner = arm
			continue
		}
		cmp := arm.score().Compare(winner.score())
		if cmp > 0 || (cmp == 0 && arm.Complete() && !winner.Complete()) {
			winner = arm
		}
	}
	return winner
}
