// internal/store/sqlite.go
//
// SQLite implementation of the Store interface.
// State written here survives restarts; main rehydrates the engine from
// LoadAll at startup. Answers and commitments are stored as hex, guesses as
// raw blobs, score vectors as digit strings ("21100").

package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/System625/StellarCade/apps/go-resolver/internal/engine"
)

// SQLite is a Store backed by a *sql.DB (mattn/go-sqlite3 driver).
type SQLite struct {
	db *sql.DB
}

// NewSQLite constructs a SQLite-backed Store. The schema must already be
// applied (see Migrate).
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) SavePuzzle(ctx context.Context, p engine.Puzzle) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO puzzles (id, commitment, state, answer, winner_count, player_count)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(id) DO UPDATE SET
            state=excluded.state,
            answer=excluded.answer,
            winner_count=excluded.winner_count,
            player_count=excluded.player_count`,
		int64(p.ID), p.Commitment.String(), int(p.State),
		hex.EncodeToString(p.Answer), p.WinnerCount, p.PlayerCount,
	)
	if err != nil {
		return fmt.Errorf("save puzzle %d: %w", p.ID, err)
	}
	return nil
}

func (s *SQLite) RegisterPlayer(ctx context.Context, puzzleID uint64, player string, position int) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO puzzle_players (puzzle_id, player, position)
        VALUES (?,?,?)`,
		int64(puzzleID), player, position,
	)
	if err != nil {
		return fmt.Errorf("register player: %w", err)
	}
	return nil
}

func (s *SQLite) AppendAttempt(ctx context.Context, puzzleID uint64, player string, attemptNumber int, guess []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO attempts (puzzle_id, player, attempt_number, guess)
        VALUES (?,?,?,?)`,
		int64(puzzleID), player, attemptNumber, guess,
	)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

func (s *SQLite) SaveResults(ctx context.Context, p engine.Puzzle, results []PlayerResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        UPDATE puzzles SET state=?, answer=?, winner_count=? WHERE id=?`,
		int(p.State), hex.EncodeToString(p.Answer), p.WinnerCount, int64(p.ID),
	); err != nil {
		return fmt.Errorf("save results: puzzle: %w", err)
	}

	for _, r := range results {
		for i, att := range r.Attempts {
			if _, err := tx.ExecContext(ctx, `
                UPDATE attempts SET scores=? WHERE puzzle_id=? AND player=? AND attempt_number=?`,
				scoresToString(att.Scores), int64(p.ID), r.Player, i+1,
			); err != nil {
				return fmt.Errorf("save results: scores: %w", err)
			}
		}
		if r.Winner {
			if _, err := tx.ExecContext(ctx, `
                INSERT OR IGNORE INTO winners (puzzle_id, player) VALUES (?,?)`,
				int64(p.ID), r.Player,
			); err != nil {
				return fmt.Errorf("save results: winner: %w", err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLite) LoadAll(ctx context.Context) ([]engine.PuzzleSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, commitment, state, answer, winner_count, player_count
        FROM puzzles ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load puzzles: %w", err)
	}
	defer rows.Close()

	var out []engine.PuzzleSnapshot
	for rows.Next() {
		var (
			id                 int64
			commitment, answer string
			state              int
			p                  engine.Puzzle
		)
		if err := rows.Scan(&id, &commitment, &state, &answer, &p.WinnerCount, &p.PlayerCount); err != nil {
			return nil, err
		}
		p.ID = uint64(id)
		p.State = engine.State(state)
		if p.Commitment, err = engine.ParseCommitment(commitment); err != nil {
			return nil, fmt.Errorf("puzzle %d: %w", id, err)
		}
		if answer != "" {
			if p.Answer, err = hex.DecodeString(answer); err != nil {
				return nil, fmt.Errorf("puzzle %d: answer: %w", id, err)
			}
		}
		out = append(out, engine.PuzzleSnapshot{Puzzle: p})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := s.loadPuzzleDetail(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// loadPuzzleDetail fills the roster, attempts, and winners of one snapshot.
func (s *SQLite) loadPuzzleDetail(ctx context.Context, snap *engine.PuzzleSnapshot) error {
	id := int64(snap.Puzzle.ID)

	playerRows, err := s.db.QueryContext(ctx, `
        SELECT player FROM puzzle_players WHERE puzzle_id=? ORDER BY position ASC`, id)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	defer playerRows.Close()
	for playerRows.Next() {
		var player string
		if err := playerRows.Scan(&player); err != nil {
			return err
		}
		snap.Players = append(snap.Players, player)
	}
	if err := playerRows.Err(); err != nil {
		return err
	}

	snap.Attempts = make(map[string][]engine.Attempt, len(snap.Players))
	attemptRows, err := s.db.QueryContext(ctx, `
        SELECT player, guess, scores FROM attempts
        WHERE puzzle_id=? ORDER BY player, attempt_number ASC`, id)
	if err != nil {
		return fmt.Errorf("load attempts: %w", err)
	}
	defer attemptRows.Close()
	for attemptRows.Next() {
		var (
			player, scores string
			guess          []byte
		)
		if err := attemptRows.Scan(&player, &guess, &scores); err != nil {
			return err
		}
		att := engine.Attempt{Guess: guess}
		if att.Scores, err = scoresFromString(scores); err != nil {
			return fmt.Errorf("puzzle %d player %s: %w", id, player, err)
		}
		snap.Attempts[player] = append(snap.Attempts[player], att)
	}
	if err := attemptRows.Err(); err != nil {
		return err
	}

	snap.Winners = make(map[string]bool)
	winnerRows, err := s.db.QueryContext(ctx, `
        SELECT player FROM winners WHERE puzzle_id=?`, id)
	if err != nil {
		return fmt.Errorf("load winners: %w", err)
	}
	defer winnerRows.Close()
	for winnerRows.Next() {
		var player string
		if err := winnerRows.Scan(&player); err != nil {
			return err
		}
		snap.Winners[player] = true
	}
	return winnerRows.Err()
}

// scoresToString encodes a score vector as one digit per byte ("21100").
func scoresToString(scores []engine.Score) string {
	if len(scores) == 0 {
		return ""
	}
	b := make([]byte, len(scores))
	for i, s := range scores {
		b[i] = '0' + byte(s)
	}
	return string(b)
}

// scoresFromString decodes a digit string back to a score vector. An empty
// string means not yet scored (nil).
func scoresFromString(s string) ([]engine.Score, error) {
	if s == "" {
		return nil, nil
	}
	out := make([]engine.Score, len(s))
	for i := 0; i < len(s); i++ {
		d := s[i] - '0'
		if d > uint8(engine.ScoreCorrect) {
			return nil, fmt.Errorf("bad score digit %q", s[i])
		}
		out[i] = engine.Score(d)
	}
	return out, nil
}
