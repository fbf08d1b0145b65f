package abts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Bot owns the designated player identity and drives the iterative
// deepening search. A Bot allocates a fresh arm store per Select/
// DetailedSelect call — there is no state persisted between calls.
type Bot[S State[S, A, P, F], A any, P comparable, F Fitness[F]] struct {
	player   P
	ctx      context.Context
	listener Listener[A, F]
	logger   zerolog.Logger
}

// New creates a Bot designated to play as player.
func New[S State[S, A, P, F], A any, P comparable, F Fitness[F]](player P) *Bot[S, A, P, F] {
	return &Bot[S, A, P, F]{
		player: player,
		ctx:    context.Background(),
		logger: log.Logger,
	}
}

// SetContext attaches ctx so a caller can cancel a running Select/
// DetailedSelect from the outside, in addition to the time budget. A
// cancelled context surfaces exactly like an elapsed deadline: the driver
// returns the best result of the last completed iteration.
func (b *Bot[S, A, P, F]) SetContext(ctx context.Context) *Bot[S, A, P, F] {
	if ctx != nil {
		b.ctx = ctx
	}
	return b
}

// SetListener attaches a callback fired after each completed deepening
// iteration.
func (b *Bot[S, A, P, F]) SetListener(listener Listener[A, F]) *Bot[S, A, P, F] {
	b.listener = listener
	return b
}

// SetLogger overrides the zerolog logger used for per-search structured
// logs. Defaults to the global logger.
func (b *Bot[S, A, P, F]) SetLogger(logger zerolog.Logger) *Bot[S, A, P, F] {
	b.logger = logger
	return b
}

// DetailedResult is what DetailedSelect returns: the chosen action, its
// expected fitness, and the principal variation under the deepest
// analysis completed.
type DetailedResult[A any, F any] struct {
	Action  A
	Fitness F
	Path    Path
}

// Select returns the chosen action for the bot within budget, or false if
// the root has no legal actions.
func (b *Bot[S, A, P, F]) Select(state S, budget time.Duration) (A, bool) {
	result, ok := b.DetailedSelect(state, budget)
	return result.Action, ok
}

// DetailedSelect is Select plus the expected fitness and principal
// variation under the deepest analysis completed.
func (b *Bot[S, A, P, F]) DetailedSelect(state S, budget time.Duration) (DetailedResult[A, F], bool) {
	searchID := uuid.NewString()
	logger := b.logger.With().Str("search_id", searchID).Logger()

	rootFitness, rootActions := state.Actions(state.Turn())
	if len(rootActions) == 0 {
		logger.Debug().Msg("select: empty root, nothing to do")
		var zero DetailedResult[A, F]
		return zero, false
	}

	started := time.Now()
	deadline := started.Add(budget)
	stats := &SearchStats{}

	store := newArmStore[A, F](rootActions, rootFitness)

	var lastCompleted *Arm[A, F] // best arm of the most recently *completed* iteration
	var lastCompletedOk bool

	for depth := 1; ; depth++ {
		iterStart := time.Now()
		alpha0 := store.initialAlpha()
		next := store.carryForward()
		cancelled := false

		for _, arm := range store.iterOrder() {
			if !store.shouldRetest(arm) {
				continue // already carried forward by carryForward()
			}

			if b.ctx.Err() != nil || time.Now().After(deadline) {
				cancelled = true
				break
			}

			child := state.Clone()
			active := child.Turn()
			child.Execute(arm.Action, active)
			nextActive := child.Turn()

			alpha := maxFitness(alpha0, next.initialAlpha())
			result := evaluate[S, A, P, F](child, nextActive, b.player, depth-1, alpha, alpha0.Max(), deadline, stats)

			if result.Cancelled() {
				cancelled = true
				break
			}

			armPath := prepend(arm.Index, result.Path())
			if result.Exact() {
				next.addComplete(arm.Index, result.Value(), armPath)
			} else {
				next.addPartial(arm.Index, result.Value(), armPath)
			}
		}

		if cancelled {
			logger.Debug().Int("depth", depth).Msg("select: iteration cancelled, keeping last completed result")
			break
		}

		store = next
		stats.noteDepth(depth)
		best := store.best()
		lastCompleted, lastCompletedOk = best, best != nil

		logger.Debug().
			Int("depth", depth).
			Int("nodes", stats.NodesVisited).
			Int("cutoffs", stats.Cutoffs).
			Dur("iteration_elapsed", time.Since(iterStart)).
			Msg("select: iteration complete")

		if b.listener != nil && best != nil {
			b.listener(IterationResult[A, F]{
				Depth:       depth,
				BestAction:  best.Action,
				BestFitness: best.score(),
				Path:        best.bestPath,
				Resolved:    store.allComplete(),
				Stats:       *stats,
			})
		}

		if store.allComplete() {
			logger.Info().Int("depth", depth).Dur("elapsed", time.Since(started)).Msg("select: tree fully resolved")
			break
		}
		if b.ctx.Err() != nil || time.Now().After(deadline) {
			logger.Info().Int("depth", depth).Msg("select: deadline reached between iterations")
			break
		}
	}

	stats.Elapsed = time.Since(started)

	if !lastCompletedOk {
		// No iteration completed even once (deadline hit inside depth 1).
		// Fall back to the first root action.
		return DetailedResult[A, F]{Action: rootActions[0]}, true
	}

	return DetailedResult[A, F]{
		Action:  lastCompleted.Action,
		Fitness: lastCompleted.score(),
		Path:    lastCompleted.bestPath,
	}, true
}
