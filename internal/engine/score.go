// internal/engine/score.go
//
// Guess scoring for the resolution engine.
// Responsibilities:
//   - Score: per-byte result of a guess (absent/present/correct).
//   - ScoreGuess: the classic two-pass scoring algorithm over raw bytes.
//   - AllCorrect: winner predicate for a score vector.
//
// Scores are numeric (0/1/2) so they round-trip unchanged through the
// persistence layer and the HTTP API.

package engine

// Score is the evaluation result for a single byte of a guess.
type Score uint8

const (
	// ScoreAbsent: byte does not appear in the (remaining) answer.
	ScoreAbsent Score = 0
	// ScorePresent: byte appears in the answer at a different position.
	ScorePresent Score = 1
	// ScoreCorrect: byte matches the answer at this position.
	ScoreCorrect Score = 2
)

// String reports the lowercase name of the score.
func (s Score) String() string {
	switch s {
	case ScoreCorrect:
		return "correct"
	case ScorePresent:
		return "present"
	}
	return "absent"
}

// ScoreGuess scores guess against answer using the standard two-pass
// algorithm. Inputs must be equal length (validated by the caller); the
// result has one Score per byte.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-correct) answer bytes by value.
//
// Pass 2:
//   - For each non-correct guess byte: if there is remaining count for that
//     byte, mark Present and decrement the count; otherwise mark Absent.
//
// Each physical answer byte backs at most one Correct/Present mark, so
// duplicate letters are never double-counted.
func ScoreGuess(guess, answer []byte) []Score {
	n := len(guess)
	res := make([]Score, n)

	// Byte frequency for the non-correct answer positions.
	var counts [256]int

	for i := 0; i < n; i++ {
		if guess[i] == answer[i] {
			res[i] = ScoreCorrect
		} else {
			counts[answer[i]]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == ScoreCorrect {
			continue
		}
		if counts[guess[i]] > 0 {
			res[i] = ScorePresent
			counts[guess[i]]--
		} else {
			res[i] = ScoreAbsent
		}
	}
	return res
}

// AllCorrect reports whether scores is a full-length all-Correct vector.
func AllCorrect(scores []Score) bool {
	if len(scores) != WordLength {
		return false
	}
	for _, s := range scores {
		if s != ScoreCorrect {
			return false
		}
	}
	return true
}
