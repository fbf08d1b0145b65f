// Package bench provides a versus arena for playing many independent games
// between two decision engines and tallying the results.
package bench

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-abts/abts/pkg/abts"
)

// ArenaState is the game contract an Arena needs beyond abts.State: a way
// to read off who won once a state has no more legal actions. Winner
// reports an arbitrary role rather than a fixed two-player win/loss/draw
// result, so the arena keeps working for any game abts.State itself
// supports, including ones with more than two roles.
type ArenaState[S any, A any, P comparable, F abts.Fitness[F]] interface {
	abts.State[S, A, P, F]

	// Winner reports the winning role once Actions(anyone) returns no
	// legal actions. ok is false for a drawn/no-winner terminal.
	// Undefined on a non-terminal state.
	Winner() (P, bool)
}

// Selector picks an action for a state within a time budget. abts.Bot
// satisfies this directly; the arena is deliberately blind to how a
// Selector reaches its answer, so any alpha-beta or otherwise-driven
// decision engine can be dropped in on either side of a match.
type Selector[S any, A any, P comparable, F abts.Fitness[F]] interface {
	Select(state S, budget time.Duration) (A, bool)
}

// Arena plays NGames independent games between Selector1 and Selector2 on
// copies of Position, splitting the work across NWorkers goroutines.
type Arena[S ArenaState[S, A, P, F], A any, P comparable, F abts.Fitness[F]] struct {
	ArenaStats
	Selector1 Selector[S, A, P, F]
	Selector2 Selector[S, A, P, F]
	RoleA     P
	RoleB     P
	Position  S
	NGames    uint
	NWorkers  uint
	Budget    time.Duration

	wg       sync.WaitGroup
	finished atomic.Bool
	ctx      context.Context
}

// NewArena builds an Arena with reasonable defaults (100 games, 2
// workers) which Setup can override before Start.
func NewArena[S ArenaState[S, A, P, F], A any, P comparable, F abts.Fitness[F]](
	position S, roleA, roleB P, selector1, selector2 Selector[S, A, P, F],
) *Arena[S, A, P, F] {
	return &Arena[S, A, P, F]{
		Selector1: selector1,
		Selector2: selector2,
		RoleA:     roleA,
		RoleB:     roleB,
		Position:  position,
		NGames:    100,
		NWorkers:  2,
		Budget:    time.Second,
		ctx:       context.Background(),
	}
}

// WithContext attaches ctx so a caller can cancel an in-progress arena run
// from the outside.
func (ar *Arena[S, A, P, F]) WithContext(ctx context.Context) *Arena[S, A, P, F] {
	if ctx != nil {
		ar.ctx = ctx
	}
	return ar
}

// Setup overrides the game count, per-move budget and worker count.
func (ar *Arena[S, A, P, F]) Setup(nGames, nWorkers uint, budget time.Duration) {
	ar.NGames = nGames
	ar.NWorkers = nWorkers
	ar.Budget = budget
}

// Wait blocks until every worker has reported completion.
func (ar *Arena[S, A, P, F]) Wait() {
	ar.wg.Wait()
	for !ar.finished.Load() {
		runtime.Gosched()
	}
}

// Start launches NWorkers goroutines, each playing its equal share of the
// total game count, and returns immediately.
func (ar *Arena[S, A, P, F]) Start(listener ListenerLike[A]) {
	ar.finished.Store(false)
	if listener != nil {
		listener.OnStart()
	}

	nWorkers := ar.NWorkers
	if nWorkers == 0 {
		nWorkers = 1
	}
	gamesPerWorker := ar.NGames / nWorkers
	rest := ar.NGames % nWorkers

	for i := uint(0); i < nWorkers; i++ {
		delta := uint(0)
		if rest > 0 {
			delta = 1
			rest--
		}
		ar.wg.Add(1)

		var l ListenerLike[A]
		if listener != nil {
			l = listener.Clone()
			l.SetRow(int(i))
		}
		go ar.worker(int(i), int(gamesPerWorker+delta), l)
	}

	if nWorkers > 0 {
		go func() {
			ar.wg.Wait()
			if listener != nil {
				listener.Summary(SummaryInfo{
					TotalGames:  ar.Total(),
					Player1Wins: ar.Player1Wins(),
					Player2Wins: ar.Player2Wins(),
					Draws:       ar.Draws(),
					Workers:     int(nWorkers),
				})
				listener.OnEnd()
			}
			ar.finished.Store(true)
		}()
	}
}

func (ar *Arena[S, A, P, F]) worker(id, nGames int, listener ListenerLike[A]) {
	defer ar.wg.Done()
	r := rand.New(rand.NewSource(int64(id) + 1))

	var local struct{ p1Wins, p2Wins, draws int }

Loop:
	for i := 0; i < nGames; i++ {
		select {
		case <-ar.ctx.Done():
			break Loop
		default:
		}

		// Swap which Selector plays RoleA each game, so a first-mover
		// advantage doesn't systematically favor Selector1.
		swapped := r.Intn(2) == 0
		selA, selB := ar.Selector1, ar.Selector2
		if swapped {
			selA, selB = ar.Selector2, ar.Selector1
		}

		result := ar.playGame(selA, selB, listener, id, nGames, i)
		if swapped {
			result = -result
		}

		switch result {
		case Draw:
			atomic.AddUint32(&ar.draws, 1)
			local.draws++
		case Player1Win:
			atomic.AddUint32(&ar.p1Wins, 1)
			local.p1Wins++
		case Player2Win:
			atomic.AddUint32(&ar.p2Wins, 1)
			local.p2Wins++
		}
	}

	if listener != nil {
		listener.OnFinishedWork(WorkerInfo[A]{
			WorkerID:      id,
			NGames:        nGames,
			FinishedGames: ar.Total(),
			Player1Wins:   local.p1Wins,
			Player2Wins:   local.p2Wins,
			Draws:         local.draws,
		})
	}
}

// playGame plays selA (as RoleA) against selB (as RoleB) to completion on
// a fresh clone of ar.Position, returning the outcome from selA's
// perspective.
func (ar *Arena[S, A, P, F]) playGame(
	selA, selB Selector[S, A, P, F], listener ListenerLike[A], workerID, nGames, finishedGames int,
) MatchResult {
	if listener != nil {
		listener.OnGameStart()
	}

	pos := ar.Position.Clone()
	moves := make([]A, 0, 64)

	for {
		active := pos.Turn()
		_, actions := pos.Actions(active)
		if len(actions) == 0 {
			break
		}

		select {
		case <-ar.ctx.Done():
			return Draw
		default:
		}

		var action A
		var ok bool
		if active == ar.RoleA {
			action, ok = selA.Select(pos, ar.Budget)
		} else {
			action, ok = selB.Select(pos, ar.Budget)
		}
		if !ok {
			break
		}

		pos.Execute(action, active)
		moves = append(moves, action)

		if listener != nil {
			listener.OnMoveMade(WorkerInfo[A]{
				WorkerID:      workerID,
				Moves:         moves,
				MoveNum:       len(moves),
				NGames:        nGames,
				FinishedGames: finishedGames,
			})
		}
	}

	winner, ok := pos.Winner()
	result := toMatchResult(winner, ok, ar.RoleA)

	if listener != nil {
		listener.OnFinishedGame(WorkerInfo[A]{
			WorkerID:      workerID,
			Moves:         moves,
			MoveNum:       len(moves),
			NGames:        nGames,
			FinishedGames: finishedGames,
		})
	}

	return result
}
