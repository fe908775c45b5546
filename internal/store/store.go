// internal/store/store.go
//
// Persistence interface for the resolution engine's state. The engine itself
// performs no I/O; the HTTP layer writes through to a Store after each
// successful engine call and rehydrates the engine from LoadAll at startup.
//
// Implementations: memory (tests/ephemeral) and SQLite (durable).

package store

import (
	"context"

	"github.com/System625/StellarCade/apps/go-resolver/internal/engine"
)

// PlayerResult carries one player's scored attempts and winner flag for
// SaveResults after finalize.
type PlayerResult struct {
	Player   string
	Attempts []engine.Attempt
	Winner   bool
}

// Store persists puzzle state between process restarts.
type Store interface {
	// SavePuzzle inserts or updates the puzzle metadata row.
	SavePuzzle(ctx context.Context, p engine.Puzzle) error

	// RegisterPlayer records a player joining the puzzle roster at the
	// given insertion position (0-based).
	RegisterPlayer(ctx context.Context, puzzleID uint64, player string, position int) error

	// AppendAttempt records a submitted guess. attemptNumber is 1-based.
	AppendAttempt(ctx context.Context, puzzleID uint64, player string, attemptNumber int, guess []byte) error

	// SaveResults writes the finalized puzzle metadata, every player's
	// scored attempts, and winner flags. Atomic for durable backends.
	SaveResults(ctx context.Context, p engine.Puzzle, results []PlayerResult) error

	// LoadAll returns the full persisted state for every puzzle.
	LoadAll(ctx context.Context) ([]engine.PuzzleSnapshot, error)
}
