// internal/engine/types.go
//
// Core type definitions for the puzzle resolution engine.
// Defines:
//   - State: puzzle lifecycle (open/revealed/finalized), forward-only.
//   - Attempt: one submitted guess with its per-letter scores.
//   - Puzzle: metadata and result summary for one puzzle.
//   - Snapshot types used to persist and restore engine state.

package engine

import "fmt"

// Engine-wide limits. MaxPlayers and MaxAttempts bound the finalize pass to
// O(MaxPlayers × MaxAttempts) regardless of input.
const (
	WordLength  = 5
	MaxAttempts = 6
	MaxPlayers  = 1000
)

// State is the lifecycle state of a puzzle. Transitions are forward-only:
// Open → Revealed → Finalized, each edge taken at most once.
type State uint8

const (
	StateOpen State = iota
	StateRevealed
	StateFinalized
)

// String reports the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateRevealed:
		return "revealed"
	case StateFinalized:
		return "finalized"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Attempt is one player's one guess. Scores is empty until the puzzle is
// finalized, then exactly WordLength entries.
type Attempt struct {
	Guess  []byte
	Scores []Score
}

// Puzzle is the metadata and result summary for one puzzle. Answer is nil
// while the puzzle is Open and exactly WordLength bytes afterwards.
type Puzzle struct {
	ID          uint64
	Commitment  Commitment
	State       State
	Answer      []byte
	WinnerCount uint32
	PlayerCount uint32
}

// PuzzleSnapshot is the full persisted state of one puzzle, used to move
// engine state across the persistence boundary (Registry.Restore and
// store.Store.LoadAll).
type PuzzleSnapshot struct {
	Puzzle   Puzzle
	Players  []string // roster, insertion order
	Attempts map[string][]Attempt
	Winners  map[string]bool
}
