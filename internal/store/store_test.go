package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/System625/StellarCade/apps/go-resolver/internal/engine"
)

// exerciseStoreRoundTrip drives one puzzle through the write paths of a Store
// and checks that LoadAll returns the same state. Shared by the memory and
// SQLite suites.
func exerciseStoreRoundTrip(t *testing.T, ctx context.Context, s Store) {
	t.Helper()

	answer := []byte("ABCDE")
	commitment := engine.Seal(answer)

	require.NoError(t, s.SavePuzzle(ctx, engine.Puzzle{
		ID:         1,
		Commitment: commitment,
		State:      engine.StateOpen,
	}))

	require.NoError(t, s.RegisterPlayer(ctx, 1, "p1", 0))
	require.NoError(t, s.AppendAttempt(ctx, 1, "p1", 1, []byte("WRONG")))
	require.NoError(t, s.AppendAttempt(ctx, 1, "p1", 2, []byte("ABCDE")))
	require.NoError(t, s.RegisterPlayer(ctx, 1, "p2", 1))
	require.NoError(t, s.AppendAttempt(ctx, 1, "p2", 1, []byte("ZZZZZ")))

	require.NoError(t, s.SavePuzzle(ctx, engine.Puzzle{
		ID:          1,
		Commitment:  commitment,
		State:       engine.StateRevealed,
		Answer:      answer,
		PlayerCount: 2,
	}))

	finalized := engine.Puzzle{
		ID:          1,
		Commitment:  commitment,
		State:       engine.StateFinalized,
		Answer:      answer,
		WinnerCount: 1,
		PlayerCount: 2,
	}
	results := []PlayerResult{
		{
			Player: "p1",
			Attempts: []engine.Attempt{
				{Guess: []byte("WRONG"), Scores: engine.ScoreGuess([]byte("WRONG"), answer)},
				{Guess: []byte("ABCDE"), Scores: engine.ScoreGuess([]byte("ABCDE"), answer)},
			},
			Winner: true,
		},
		{
			Player: "p2",
			Attempts: []engine.Attempt{
				{Guess: []byte("ZZZZZ"), Scores: engine.ScoreGuess([]byte("ZZZZZ"), answer)},
			},
		},
	}
	require.NoError(t, s.SaveResults(ctx, finalized, results))

	snaps, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	snap := snaps[0]
	assert.Equal(t, finalized, snap.Puzzle)
	assert.Equal(t, []string{"p1", "p2"}, snap.Players)
	assert.Equal(t, results[0].Attempts, snap.Attempts["p1"])
	assert.Equal(t, results[1].Attempts, snap.Attempts["p2"])
	assert.True(t, snap.Winners["p1"])
	assert.False(t, snap.Winners["p2"])
}
