// internal/engine/ledger.go
//
// Per-player ordered attempt lists for one puzzle. Append-only during Open
// state, capacity-bounded per player; scores are written exactly once, during
// finalize.

package engine

// Ledger stores the ordered guesses submitted by each player.
type Ledger struct {
	attempts map[string][]Attempt
	cap      int // per-player maximum
}

// NewLedger constructs an empty ledger with the given per-player capacity.
func NewLedger(capacity int) *Ledger {
	return &Ledger{
		attempts: make(map[string][]Attempt),
		cap:      capacity,
	}
}

// Count reports the number of attempts recorded for player.
func (l *Ledger) Count(player string) int {
	return len(l.attempts[player])
}

// AttemptsFor returns copies of player's attempts in submission order.
// Players with no submissions get an empty slice.
func (l *Ledger) AttemptsFor(player string) []Attempt {
	stored := l.attempts[player]
	out := make([]Attempt, len(stored))
	for i, a := range stored {
		out[i] = copyAttempt(a)
	}
	return out
}

// Append records a new guess for player and returns the 1-based attempt
// number. Fails with ErrTooManyAttempts at the per-player capacity. The
// guess is copied; the caller's slice is not retained.
func (l *Ledger) Append(player string, guess []byte) (int, error) {
	if len(l.attempts[player]) >= l.cap {
		return 0, ErrTooManyAttempts
	}
	g := make([]byte, len(guess))
	copy(g, guess)
	l.attempts[player] = append(l.attempts[player], Attempt{Guess: g})
	return len(l.attempts[player]), nil
}

// SetScores writes the score vector for player's attempt at index (0-based).
// Only called during finalize; an out-of-range index is ignored.
func (l *Ledger) SetScores(player string, index int, scores []Score) {
	stored := l.attempts[player]
	if index < 0 || index >= len(stored) {
		return
	}
	s := make([]Score, len(scores))
	copy(s, scores)
	stored[index].Scores = s
}

func copyAttempt(a Attempt) Attempt {
	out := Attempt{Guess: make([]byte, len(a.Guess))}
	copy(out.Guess, a.Guess)
	if a.Scores != nil {
		out.Scores = make([]Score, len(a.Scores))
		copy(out.Scores, a.Scores)
	}
	return out
}
