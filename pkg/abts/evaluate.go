package abts

import "time"

// evaluate is the alpha-beta evaluator: recursive minimax with alpha-beta
// pruning, driven to a target depth and a deadline. Active/maximizing-vs-
// minimizing is decided purely by comparing active against bot at every
// node — this is never negated (negamax); fitness values are always
// reported from the bot's own perspective, so negating them would flip
// the sign twice at every other ply.
func evaluate[S State[S, A, P, F], A any, P comparable, F Fitness[F]](
	state S,
	active P,
	bot P,
	depth int,
	alpha F,
	beta F,
	deadline time.Time,
	stats *SearchStats,
) Outcome[F] {
	fitness, actions := state.Actions(active)
	stats.visitNode()

	// The leaf value is always the bot's own fitness, not the active
	// player's — actions(active) above is only consulted to detect
	// terminality/enumerate children, never as the decisive value unless
	// active happens to be the bot.
	if len(actions) == 0 {
		if active != bot {
			fitness, _ = state.Actions(bot)
		}
		return exactOutcome(fitness, nil)
	}
	if depth == 0 {
		// A depth cutoff on a non-terminal node is a heuristic estimate,
		// not a proof: it must stay eligible for retesting at the next
		// deepening iteration, so it is bounded rather than Exact. Treating
		// it as Exact would freeze every root arm as Complete after the
		// very first iteration (every arm's own evaluate call starts at
		// depth-1, so depth=1 always begins at depth=0), defeating
		// iterative deepening entirely.
		if active != bot {
			fitness, _ = state.Actions(bot)
		}
		return upperBoundOutcome(fitness, nil)
	}

	maximizing := active == bot

	var best F
	if maximizing {
		best = fitness.Min()
	} else {
		best = fitness.Max()
	}
	var bestPath Path
	allExact := true

	for i, action := range actions {
		if time.Now().After(deadline) {
			return cancelledOutcome[F]()
		}

		child := state.Clone()
		child.Execute(action, active)
		next := child.Turn()

		var childAlpha, childBeta F
		if maximizing {
			childAlpha, childBeta = maxFitness(alpha, best), beta
		} else {
			childAlpha, childBeta = alpha, minFitness(beta, best)
		}

		result := evaluate[S, A, P, F](child, next, bot, depth-1, childAlpha, childBeta, deadline, stats)
		if result.Cancelled() {
			return cancelledOutcome[F]()
		}
		if !result.Exact() {
			allExact = false
		}

		v := result.Value()
		if maximizing {
			if greater(v, best) {
				best = v
				bestPath = prepend(i, result.Path())
			}
			if !less(best, beta) || best.IsUpperBound() {
				stats.recordCutoff()
				return upperBoundOutcome(best, bestPath)
			}
		} else {
			if less(v, best) {
				best = v
				bestPath = prepend(i, result.Path())
			}
			if !greater(best, alpha) || best.IsLowerBound() {
				stats.recordCutoff()
				return upperBoundOutcome(best, bestPath)
			}
		}
	}

	if allExact {
		return exactOutcome(best, bestPath)
	}
	return upperBoundOutcome(best, bestPath)
}
