// internal/events/events.go
//
// Notification types emitted by the resolution engine.
// Four events, one per successful lifecycle operation:
//   - PuzzleCreated:    puzzle id + answer commitment.
//   - AttemptSubmitted: puzzle id, player, 1-based attempt number, raw guess.
//   - AnswerRevealed:   puzzle id (the answer itself travels via reads).
//   - PuzzleFinalized:  puzzle id, plaintext answer, winner count.
//
// Emitter implementations:
//   - Log:      structured zerolog output (production).
//   - Recorder: captures events in order (tests).
//   - Nop:      discards everything.

package events

import (
	"encoding/hex"
	"sync"

	"github.com/rs/zerolog"
)

// PuzzleCreated is emitted once when a puzzle is registered.
type PuzzleCreated struct {
	PuzzleID   uint64
	Commitment [32]byte
}

// AttemptSubmitted is emitted once per accepted guess.
type AttemptSubmitted struct {
	PuzzleID      uint64
	Player        string
	AttemptNumber int // 1-based
	Guess         []byte
}

// AnswerRevealed is emitted once when the commitment is opened.
type AnswerRevealed struct {
	PuzzleID uint64
}

// PuzzleFinalized is emitted once when all attempts have been scored.
type PuzzleFinalized struct {
	PuzzleID    uint64
	Answer      []byte
	WinnerCount uint32
}

// Emitter receives engine notifications. Implementations must not retain
// the Guess/Answer slices beyond the call.
type Emitter interface {
	PuzzleCreated(e PuzzleCreated)
	AttemptSubmitted(e AttemptSubmitted)
	AnswerRevealed(e AnswerRevealed)
	PuzzleFinalized(e PuzzleFinalized)
}

// ---------------------------------- Log ------------------------------------

// Log writes each event as a structured log line.
type Log struct {
	logger zerolog.Logger
}

// NewLog constructs a logging emitter.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) PuzzleCreated(e PuzzleCreated) {
	l.logger.Info().
		Uint64("puzzleId", e.PuzzleID).
		Str("commitment", hex.EncodeToString(e.Commitment[:])).
		Msg("puzzle created")
}

func (l *Log) AttemptSubmitted(e AttemptSubmitted) {
	l.logger.Info().
		Uint64("puzzleId", e.PuzzleID).
		Str("player", e.Player).
		Int("attemptNumber", e.AttemptNumber).
		Str("guess", string(e.Guess)).
		Msg("attempt submitted")
}

func (l *Log) AnswerRevealed(e AnswerRevealed) {
	l.logger.Info().
		Uint64("puzzleId", e.PuzzleID).
		Msg("answer revealed")
}

func (l *Log) PuzzleFinalized(e PuzzleFinalized) {
	l.logger.Info().
		Uint64("puzzleId", e.PuzzleID).
		Str("answer", string(e.Answer)).
		Uint32("winnerCount", e.WinnerCount).
		Msg("puzzle finalized")
}

// -------------------------------- Recorder ---------------------------------

// Recorder captures every event in emission order. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []any
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(e any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) PuzzleCreated(e PuzzleCreated) { r.record(e) }

func (r *Recorder) AttemptSubmitted(e AttemptSubmitted) {
	e.Guess = append([]byte(nil), e.Guess...)
	r.record(e)
}

func (r *Recorder) AnswerRevealed(e AnswerRevealed) { r.record(e) }

func (r *Recorder) PuzzleFinalized(e PuzzleFinalized) {
	e.Answer = append([]byte(nil), e.Answer...)
	r.record(e)
}

// Events returns a copy of every recorded event in emission order.
func (r *Recorder) Events() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.events))
	copy(out, r.events)
	return out
}

// ---------------------------------- Nop ------------------------------------

// Nop discards all events.
type Nop struct{}

func (Nop) PuzzleCreated(PuzzleCreated)       {}
func (Nop) AttemptSubmitted(AttemptSubmitted) {}
func (Nop) AnswerRevealed(AnswerRevealed)     {}
func (Nop) PuzzleFinalized(PuzzleFinalized)   {}
