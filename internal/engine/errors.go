// internal/engine/errors.go
//
// Error taxonomy for the resolution engine. Every failure is a typed,
// permanent rejection of one call; nothing is retried or recovered
// internally. Callers match with errors.Is.

package engine

import "errors"

var (
	// ErrPuzzleExists: Create called with an id that is already registered.
	ErrPuzzleExists = errors.New("puzzle already exists")

	// ErrPuzzleNotFound: no puzzle with the given id.
	ErrPuzzleNotFound = errors.New("puzzle not found")

	// ErrPuzzleNotOpen: submit or reveal against a puzzle past Open.
	ErrPuzzleNotOpen = errors.New("puzzle not open")

	// ErrAnswerNotRevealed: finalize before reveal.
	ErrAnswerNotRevealed = errors.New("answer not revealed")

	// ErrAlreadyFinalized: finalize called a second time.
	ErrAlreadyFinalized = errors.New("puzzle already finalized")

	// ErrInvalidWordLength: guess or answer is not exactly WordLength bytes.
	ErrInvalidWordLength = errors.New("invalid word length")

	// ErrRosterFull: a new player would exceed MaxPlayers.
	ErrRosterFull = errors.New("puzzle roster full")

	// ErrTooManyAttempts: a player already has MaxAttempts guesses recorded.
	ErrTooManyAttempts = errors.New("too many attempts")

	// ErrCommitmentMismatch: revealed answer does not hash to the commitment.
	ErrCommitmentMismatch = errors.New("commitment mismatch")

	// ErrOverflow: a counter would wrap. Unreachable under the configured
	// caps, but counters never wrap silently.
	ErrOverflow = errors.New("arithmetic overflow")
)
