package abts

// State is the game collaborator contract. It is deliberately the only
// thing this package knows about a concrete game: no game trait, no move
// generator, no board representation lives here — those are external
// collaborators supplied by the caller.
//
// S is self-referencing (S State[S, A, P, F]) so Clone can return the
// concrete state type.
//
// Implementations own their mutation discipline: Execute mutates the
// receiver in place and returns the resulting fitness for player. The
// engine clones a state before trying a move so it can backtrack for free
// by discarding the clone; it never calls an "undo".
type State[S any, A any, P comparable, F Fitness[F]] interface {
	// Turn returns the player whose move it is in the current state —
	// each Execute flips the game's own notion of whose move is next, and
	// Turn reports it.
	Turn() P

	// Actions returns the fitness of the current state from player's
	// perspective, together with player's legal actions in this state. An
	// empty (nil or zero-length) action slice means a terminal state.
	Actions(player P) (F, []A)

	// Execute applies action in place, as player, and returns the
	// resulting fitness for player. The action must have come from a
	// prior Actions(player) call on an equivalent state; violating this
	// precondition is a programming error and may panic.
	Execute(action A, player P) F

	// Clone returns a deep copy sharing no mutable state with the
	// receiver. The engine requires it to be available and reasonably
	// cheap, since it clones once per action tried at every node.
	Clone() S
}
