package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreGuessTable(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		guess  string
		want   []Score
	}{
		{
			name:   "all correct",
			answer: "REACT",
			guess:  "REACT",
			want:   []Score{ScoreCorrect, ScoreCorrect, ScoreCorrect, ScoreCorrect, ScoreCorrect},
		},
		{
			name:   "all absent",
			answer: "ABCDE",
			guess:  "ZZZZZ",
			want:   []Score{ScoreAbsent, ScoreAbsent, ScoreAbsent, ScoreAbsent, ScoreAbsent},
		},
		{
			// Answer has two Es; guess uses three. Only two may score.
			name:   "duplicate letters consumed at most once",
			answer: "SPEED",
			guess:  "EERIE",
			want:   []Score{ScorePresent, ScorePresent, ScoreAbsent, ScoreAbsent, ScoreAbsent},
		},
		{
			name:   "present and absent mix",
			answer: "SPEED",
			guess:  "ERASE",
			want:   []Score{ScorePresent, ScoreAbsent, ScoreAbsent, ScorePresent, ScorePresent},
		},
		{
			name:   "anagram with one exact match",
			answer: "CRANE",
			guess:  "NACRE",
			want:   []Score{ScorePresent, ScorePresent, ScorePresent, ScorePresent, ScoreCorrect},
		},
		{
			// Correct marks consume answer letters before present marks do.
			name:   "exact match wins over earlier present",
			answer: "ABBEY",
			guess:  "BBBBB",
			want:   []Score{ScoreAbsent, ScoreCorrect, ScoreCorrect, ScoreAbsent, ScoreAbsent},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreGuess([]byte(tc.guess), []byte(tc.answer))
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestScoreGuessArbitraryBytes verifies scoring over raw, non-alphabetic
// byte values.
func TestScoreGuessArbitraryBytes(t *testing.T) {
	answer := []byte{0x00, 0xFF, 0x10, 0x10, 0x7F}
	guess := []byte{0xFF, 0x00, 0x10, 0x20, 0x10}

	got := ScoreGuess(guess, answer)
	want := []Score{ScorePresent, ScorePresent, ScoreCorrect, ScoreAbsent, ScorePresent}
	assert.Equal(t, want, got)
}

// TestScoreGuessNeverDoubleCounts checks the core invariant: for any answer
// byte value, the total number of Correct+Present marks against it never
// exceeds its multiplicity in the answer, and Correct marks equal the number
// of matching positions.
func TestScoreGuessNeverDoubleCounts(t *testing.T) {
	pairs := []struct{ answer, guess string }{
		{"SPEED", "ERASE"},
		{"SPEED", "EERIE"},
		{"SPEED", "SPEED"},
		{"LLAMA", "LLLLL"},
		{"BANAL", "ANNAL"},
		{"CRANE", "NACRE"},
		{"AAAAB", "BAAAA"},
	}
	for _, pair := range pairs {
		answer, guess := []byte(pair.answer), []byte(pair.guess)
		scores := ScoreGuess(guess, answer)
		require.Len(t, scores, len(guess))

		var exact int
		for i := range guess {
			if guess[i] == answer[i] {
				exact++
			}
		}
		var correct int
		credited := make(map[byte]int)
		for i, s := range scores {
			if s == ScoreCorrect {
				correct++
			}
			if s == ScoreCorrect || s == ScorePresent {
				credited[guess[i]]++
			}
		}
		assert.Equal(t, exact, correct, "%s vs %s: correct marks", pair.guess, pair.answer)

		multiplicity := make(map[byte]int)
		for _, b := range answer {
			multiplicity[b]++
		}
		for b, n := range credited {
			assert.LessOrEqual(t, n, multiplicity[b],
				"%s vs %s: byte %q over-credited", pair.guess, pair.answer, b)
		}
	}
}

func TestAllCorrect(t *testing.T) {
	assert.True(t, AllCorrect([]Score{2, 2, 2, 2, 2}))
	assert.False(t, AllCorrect([]Score{2, 2, 1, 2, 2}))
	assert.False(t, AllCorrect([]Score{2, 2, 2, 2}), "short vector is not a win")
	assert.False(t, AllCorrect(nil))
}
