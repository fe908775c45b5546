// internal/engine/registry.go
//
// PuzzleRegistry: owns each puzzle's lifecycle and orchestrates the roster,
// attempt ledger, scoring, and commitment verification.
//
// Control flow per puzzle: Create → (repeated) SubmitGuess → Reveal →
// Finalize. Every operation gates on the current lifecycle state first, then
// delegates. Operations either fully commit their mutations or fail with no
// partial mutation: all validation and all fallible computation happen before
// any state is written.
//
// The registry holds no locks and performs no I/O; the embedding environment
// serializes calls (see httpserver).

package engine

import (
	"math"

	"github.com/System625/StellarCade/apps/go-resolver/internal/events"
)

// puzzleState bundles the puzzle record with its bookkeeping containers.
type puzzleState struct {
	meta    Puzzle
	roster  *Roster
	ledger  *Ledger
	winners map[string]bool
}

// Registry owns every puzzle known to the engine.
type Registry struct {
	puzzles map[uint64]*puzzleState
	emitter events.Emitter
}

// NewRegistry constructs an empty registry. Events from successful
// operations are delivered to emitter exactly once each.
func NewRegistry(emitter events.Emitter) *Registry {
	return &Registry{
		puzzles: make(map[uint64]*puzzleState),
		emitter: emitter,
	}
}

// Create registers a new puzzle in state Open with the given answer
// commitment. Fails with ErrPuzzleExists on a duplicate id.
//
// Emits PuzzleCreated.
func (r *Registry) Create(puzzleID uint64, commitment Commitment) error {
	if _, ok := r.puzzles[puzzleID]; ok {
		return ErrPuzzleExists
	}

	r.puzzles[puzzleID] = &puzzleState{
		meta: Puzzle{
			ID:         puzzleID,
			Commitment: commitment,
			State:      StateOpen,
		},
		roster:  NewRoster(MaxPlayers),
		ledger:  NewLedger(MaxAttempts),
		winners: make(map[string]bool),
	}

	r.emitter.PuzzleCreated(events.PuzzleCreated{
		PuzzleID:   puzzleID,
		Commitment: commitment,
	})
	return nil
}

// SubmitGuess records a guess for player and returns the 1-based attempt
// number. The player is registered in the roster on their first guess.
//
// Failure order: ErrPuzzleNotFound, ErrPuzzleNotOpen, ErrInvalidWordLength,
// ErrRosterFull (new player at roster capacity), ErrTooManyAttempts.
//
// Emits AttemptSubmitted.
func (r *Registry) SubmitGuess(puzzleID uint64, player string, guess []byte) (int, error) {
	ps, ok := r.puzzles[puzzleID]
	if !ok {
		return 0, ErrPuzzleNotFound
	}
	if ps.meta.State != StateOpen {
		return 0, ErrPuzzleNotOpen
	}
	if len(guess) != WordLength {
		return 0, ErrInvalidWordLength
	}
	if !ps.roster.Contains(player) && ps.roster.Len() >= MaxPlayers {
		return 0, ErrRosterFull
	}
	if ps.ledger.Count(player) >= MaxAttempts {
		return 0, ErrTooManyAttempts
	}

	// Validation done; mutations below cannot fail halfway.
	newPlayer, err := ps.roster.InsertIfAbsent(player)
	if err != nil {
		return 0, err
	}
	if newPlayer {
		count, err := checkedAddU32(ps.meta.PlayerCount, 1)
		if err != nil {
			return 0, err
		}
		ps.meta.PlayerCount = count
	}
	attemptNumber, err := ps.ledger.Append(player, guess)
	if err != nil {
		return 0, err
	}

	r.emitter.AttemptSubmitted(events.AttemptSubmitted{
		PuzzleID:      puzzleID,
		Player:        player,
		AttemptNumber: attemptNumber,
		Guess:         guess,
	})
	return attemptNumber, nil
}

// Reveal opens the commitment: verifies that answer hashes to the stored
// digest, then stores the answer and transitions Open → Revealed. This is
// the single point where the secret becomes observable; no guesses are
// accepted afterwards. The answer is never stored before verification.
//
// Emits AnswerRevealed.
func (r *Registry) Reveal(puzzleID uint64, answer []byte) error {
	ps, ok := r.puzzles[puzzleID]
	if !ok {
		return ErrPuzzleNotFound
	}
	if ps.meta.State != StateOpen {
		return ErrPuzzleNotOpen
	}
	if len(answer) != WordLength {
		return ErrInvalidWordLength
	}
	if !ps.meta.Commitment.Verify(answer) {
		return ErrCommitmentMismatch
	}

	stored := make([]byte, len(answer))
	copy(stored, answer)
	ps.meta.Answer = stored
	ps.meta.State = StateRevealed

	r.emitter.AnswerRevealed(events.AnswerRevealed{PuzzleID: puzzleID})
	return nil
}

// Finalize scores every attempt of every roster player against the revealed
// answer, records winners (any all-correct attempt), and transitions
// Revealed → Finalized. The pass is bounded by MaxPlayers × MaxAttempts and
// iterates the roster in insertion order, so results are reproducible.
//
// A second call fails with ErrAlreadyFinalized; the pass is never silently
// re-executed. All scoring is computed before any attempt is mutated, so a
// failure cannot leave some attempts scored and others not.
//
// Emits PuzzleFinalized.
func (r *Registry) Finalize(puzzleID uint64) error {
	ps, ok := r.puzzles[puzzleID]
	if !ok {
		return ErrPuzzleNotFound
	}
	if ps.meta.State == StateFinalized {
		return ErrAlreadyFinalized
	}
	if ps.meta.State != StateRevealed {
		return ErrAnswerNotRevealed
	}

	answer := ps.meta.Answer
	players := ps.roster.Players()

	// Compute everything first.
	type scoredPlayer struct {
		player string
		scores [][]Score
		won    bool
	}
	results := make([]scoredPlayer, 0, len(players))
	var winnerCount uint32
	for _, p := range players {
		sp := scoredPlayer{player: p}
		for _, att := range ps.ledger.AttemptsFor(p) {
			scores := ScoreGuess(att.Guess, answer)
			if AllCorrect(scores) {
				sp.won = true
			}
			sp.scores = append(sp.scores, scores)
		}
		if sp.won {
			count, err := checkedAddU32(winnerCount, 1)
			if err != nil {
				return err
			}
			winnerCount = count
		}
		results = append(results, sp)
	}

	// Commit.
	for _, sp := range results {
		for i, scores := range sp.scores {
			ps.ledger.SetScores(sp.player, i, scores)
		}
		if sp.won {
			ps.winners[sp.player] = true
		}
	}
	ps.meta.WinnerCount = winnerCount
	ps.meta.State = StateFinalized

	r.emitter.PuzzleFinalized(events.PuzzleFinalized{
		PuzzleID:    puzzleID,
		Answer:      answer,
		WinnerCount: winnerCount,
	})
	return nil
}

// ------------------------------- reads -------------------------------------

// Puzzle returns a copy of the puzzle metadata.
func (r *Registry) Puzzle(puzzleID uint64) (Puzzle, error) {
	ps, ok := r.puzzles[puzzleID]
	if !ok {
		return Puzzle{}, ErrPuzzleNotFound
	}
	meta := ps.meta
	if meta.Answer != nil {
		answer := make([]byte, len(ps.meta.Answer))
		copy(answer, ps.meta.Answer)
		meta.Answer = answer
	}
	return meta, nil
}

// Players returns the puzzle's roster in insertion order.
func (r *Registry) Players(puzzleID uint64) ([]string, error) {
	ps, ok := r.puzzles[puzzleID]
	if !ok {
		return nil, ErrPuzzleNotFound
	}
	return ps.roster.Players(), nil
}

// Attempts returns player's attempts for the puzzle, scores populated only
// after finalize. Players with no submissions get an empty slice.
func (r *Registry) Attempts(puzzleID uint64, player string) ([]Attempt, error) {
	ps, ok := r.puzzles[puzzleID]
	if !ok {
		return nil, ErrPuzzleNotFound
	}
	return ps.ledger.AttemptsFor(player), nil
}

// IsWinner reports whether player solved the puzzle. False before finalize
// and for unknown puzzles or players.
func (r *Registry) IsWinner(puzzleID uint64, player string) bool {
	ps, ok := r.puzzles[puzzleID]
	if !ok {
		return false
	}
	return ps.winners[player]
}

// ------------------------------ restore ------------------------------------

// Snapshot exports the full state of one puzzle for persistence.
func (r *Registry) Snapshot(puzzleID uint64) (PuzzleSnapshot, error) {
	ps, ok := r.puzzles[puzzleID]
	if !ok {
		return PuzzleSnapshot{}, ErrPuzzleNotFound
	}
	snap := PuzzleSnapshot{
		Players:  ps.roster.Players(),
		Attempts: make(map[string][]Attempt, ps.roster.Len()),
		Winners:  make(map[string]bool, len(ps.winners)),
	}
	snap.Puzzle, _ = r.Puzzle(puzzleID)
	for _, p := range snap.Players {
		snap.Attempts[p] = ps.ledger.AttemptsFor(p)
	}
	for p, won := range ps.winners {
		snap.Winners[p] = won
	}
	return snap, nil
}

// Restore rebuilds registry state from persisted snapshots, bypassing
// lifecycle gating. Capacity bounds still apply. Used once at startup;
// no events are emitted.
func (r *Registry) Restore(snapshots []PuzzleSnapshot) error {
	for _, snap := range snapshots {
		if _, ok := r.puzzles[snap.Puzzle.ID]; ok {
			return ErrPuzzleExists
		}
		ps := &puzzleState{
			meta:    snap.Puzzle,
			roster:  NewRoster(MaxPlayers),
			ledger:  NewLedger(MaxAttempts),
			winners: make(map[string]bool),
		}
		if snap.Puzzle.Answer != nil {
			answer := make([]byte, len(snap.Puzzle.Answer))
			copy(answer, snap.Puzzle.Answer)
			ps.meta.Answer = answer
		}
		for _, p := range snap.Players {
			if _, err := ps.roster.InsertIfAbsent(p); err != nil {
				return err
			}
			for i, att := range snap.Attempts[p] {
				if _, err := ps.ledger.Append(p, att.Guess); err != nil {
					return err
				}
				if len(att.Scores) > 0 {
					ps.ledger.SetScores(p, i, att.Scores)
				}
			}
		}
		ps.meta.PlayerCount = uint32(ps.roster.Len())
		for p, won := range snap.Winners {
			if won {
				ps.winners[p] = true
			}
		}
		r.puzzles[snap.Puzzle.ID] = ps
	}
	return nil
}

// checkedAddU32 adds with an explicit overflow check; counters never wrap
// silently.
func checkedAddU32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}
