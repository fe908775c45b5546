// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight persistence layer used for tests and ephemeral
// deployments, or when durability is not required.
//
// Characteristics:
//   - Keeps full puzzle snapshots keyed by puzzle id.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/System625/StellarCade/apps/go-resolver/internal/engine"
)

// memory is a map-based Store implementation.
type memory struct {
	mu      sync.RWMutex
	puzzles map[uint64]*engine.PuzzleSnapshot
}

// NewMemory constructs a new in-memory Store.
func NewMemory() Store {
	return &memory{puzzles: make(map[uint64]*engine.PuzzleSnapshot)}
}

// snap returns the record for puzzleID, creating it on first use.
// Caller must hold mu.
func (m *memory) snap(puzzleID uint64) *engine.PuzzleSnapshot {
	s, ok := m.puzzles[puzzleID]
	if !ok {
		s = &engine.PuzzleSnapshot{
			Puzzle:   engine.Puzzle{ID: puzzleID},
			Attempts: make(map[string][]engine.Attempt),
			Winners:  make(map[string]bool),
		}
		m.puzzles[puzzleID] = s
	}
	return s
}

func (m *memory) SavePuzzle(ctx context.Context, p engine.Puzzle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap(p.ID).Puzzle = p
	return nil
}

func (m *memory) RegisterPlayer(ctx context.Context, puzzleID uint64, player string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snap(puzzleID)
	for _, existing := range s.Players {
		if existing == player {
			return nil
		}
	}
	s.Players = append(s.Players, player)
	return nil
}

func (m *memory) AppendAttempt(ctx context.Context, puzzleID uint64, player string, attemptNumber int, guess []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snap(puzzleID)
	g := make([]byte, len(guess))
	copy(g, guess)
	s.Attempts[player] = append(s.Attempts[player], engine.Attempt{Guess: g})
	return nil
}

func (m *memory) SaveResults(ctx context.Context, p engine.Puzzle, results []PlayerResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snap(p.ID)
	s.Puzzle = p
	for _, r := range results {
		s.Attempts[r.Player] = append([]engine.Attempt(nil), r.Attempts...)
		if r.Winner {
			s.Winners[r.Player] = true
		}
	}
	return nil
}

func (m *memory) LoadAll(ctx context.Context) ([]engine.PuzzleSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.PuzzleSnapshot, 0, len(m.puzzles))
	for _, s := range m.puzzles {
		snap := engine.PuzzleSnapshot{
			Puzzle:   s.Puzzle,
			Players:  append([]string(nil), s.Players...),
			Attempts: make(map[string][]engine.Attempt, len(s.Attempts)),
			Winners:  make(map[string]bool, len(s.Winners)),
		}
		for player, atts := range s.Attempts {
			snap.Attempts[player] = append([]engine.Attempt(nil), atts...)
		}
		for player, won := range s.Winners {
			snap.Winners[player] = won
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Puzzle.ID < out[j].Puzzle.ID })
	return out, nil
}
