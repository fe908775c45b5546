// internal/httpserver/routes_puzzle.go
//
// HTTP routes for the puzzle lifecycle.
// Exposes endpoints under /puzzles:
//   - POST /puzzles                              → create (admin)
//   - POST /puzzles/{id}/guesses                 → submit a guess (player)
//   - POST /puzzles/{id}/reveal                  → open the commitment (admin)
//   - POST /puzzles/{id}/finalize                → score everything (admin)
//   - GET  /puzzles/{id}                         → metadata
//   - GET  /puzzles/{id}/attempts/mine           → caller's attempts (player)
//   - GET  /puzzles/{id}/players/{player}/attempts
//   - GET  /puzzles/{id}/players/{player}/winner
//
// Every handler takes the engine mutex for the duration of the engine call,
// then persists the mutation set to the store. Puzzle-history persistence is
// best effort: a store failure is logged, not surfaced, since the engine
// state is authoritative for the running process.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/System625/StellarCade/apps/go-resolver/internal/engine"
	"github.com/System625/StellarCade/apps/go-resolver/internal/store"
)

// mountPuzzles registers all /puzzles routes.
func (s *Server) mountPuzzles() {
	s.r.Route("/puzzles", func(r chi.Router) {
		r.With(s.requireAdmin()).Post("/", s.handleCreatePuzzle)
		r.Route("/{puzzleID}", func(r chi.Router) {
			r.Get("/", s.handleGetPuzzle)
			r.With(s.requireAdmin()).Post("/reveal", s.handleReveal)
			r.With(s.requireAdmin()).Post("/finalize", s.handleFinalize)
			r.With(s.requireAuth()).Post("/guesses", s.handleSubmitGuess)
			r.With(s.requireAuth()).Get("/attempts/mine", s.handleMyAttempts)
			r.Get("/players/{player}/attempts", s.handlePlayerAttempts)
			r.Get("/players/{player}/winner", s.handleIsWinner)
		})
	})
}

// puzzleID parses the {puzzleID} URL parameter.
func puzzleID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "puzzleID"), 10, 64)
}

// writeEngineError maps engine sentinel errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	var code int
	var tag string
	switch {
	case errors.Is(err, engine.ErrPuzzleNotFound):
		code, tag = http.StatusNotFound, "puzzle_not_found"
	case errors.Is(err, engine.ErrInvalidWordLength):
		code, tag = http.StatusBadRequest, "invalid_word_length"
	case errors.Is(err, engine.ErrPuzzleExists):
		code, tag = http.StatusConflict, "puzzle_exists"
	case errors.Is(err, engine.ErrPuzzleNotOpen):
		code, tag = http.StatusConflict, "puzzle_not_open"
	case errors.Is(err, engine.ErrAnswerNotRevealed):
		code, tag = http.StatusConflict, "answer_not_revealed"
	case errors.Is(err, engine.ErrAlreadyFinalized):
		code, tag = http.StatusConflict, "already_finalized"
	case errors.Is(err, engine.ErrRosterFull):
		code, tag = http.StatusConflict, "roster_full"
	case errors.Is(err, engine.ErrTooManyAttempts):
		code, tag = http.StatusConflict, "too_many_attempts"
	case errors.Is(err, engine.ErrCommitmentMismatch):
		code, tag = http.StatusUnprocessableEntity, "commitment_mismatch"
	default:
		code, tag = http.StatusInternalServerError, "internal"
	}
	http.Error(w, `{"error":"`+tag+`"}`, code)
}

// puzzleRes is the wire shape of puzzle metadata. Answer is present only
// after reveal.
type puzzleRes struct {
	PuzzleID    uint64 `json:"puzzleId"`
	Commitment  string `json:"commitment"`
	State       string `json:"state"`
	Answer      string `json:"answer,omitempty"`
	WinnerCount uint32 `json:"winnerCount"`
	PlayerCount uint32 `json:"playerCount"`
}

func toPuzzleRes(p engine.Puzzle) puzzleRes {
	return puzzleRes{
		PuzzleID:    p.ID,
		Commitment:  p.Commitment.String(),
		State:       p.State.String(),
		Answer:      string(p.Answer),
		WinnerCount: p.WinnerCount,
		PlayerCount: p.PlayerCount,
	}
}

// attemptRes is the wire shape of one attempt. Scores is empty until the
// puzzle is finalized, then one value (0/1/2) per letter.
type attemptRes struct {
	Guess  string `json:"guess"`
	Scores []int  `json:"scores"`
}

func toAttemptRes(atts []engine.Attempt) []attemptRes {
	out := make([]attemptRes, len(atts))
	for i, a := range atts {
		scores := make([]int, len(a.Scores))
		for j, sc := range a.Scores {
			scores[j] = int(sc)
		}
		out[i] = attemptRes{Guess: string(a.Guess), Scores: scores}
	}
	return out
}

// ------------------------------ create -------------------------------------

type createPuzzleReq struct {
	PuzzleID   uint64 `json:"puzzleId"`
	Commitment string `json:"commitment"` // hex SHA-256 of the answer
}

// handleCreatePuzzle registers a new puzzle from an off-chain computed
// commitment. Admin only.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	var req createPuzzleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	commitment, err := engine.ParseCommitment(req.Commitment)
	if err != nil {
		http.Error(w, `{"error":"bad_commitment"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err = s.reg.Create(req.PuzzleID, commitment)
	var p engine.Puzzle
	if err == nil {
		p, _ = s.reg.Puzzle(req.PuzzleID)
	}
	s.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	puzzlesCreated.Inc()

	if err := s.st.SavePuzzle(r.Context(), p); err != nil {
		log.Warn().Err(err).Uint64("puzzleId", p.ID).Msg("persist puzzle")
	}
	_ = json.NewEncoder(w).Encode(toPuzzleRes(p))
}

// ------------------------------ submit -------------------------------------

type guessReq struct {
	Guess string `json:"guess"`
}
type guessRes struct {
	AttemptNumber int `json:"attemptNumber"`
}

// handleSubmitGuess records a guess for the authenticated player. The player
// identity comes from the token, never from the body.
func (s *Server) handleSubmitGuess(w http.ResponseWriter, r *http.Request) {
	me, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	id, err := puzzleID(r)
	if err != nil {
		http.Error(w, `{"error":"bad_puzzle_id"}`, http.StatusBadRequest)
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	attemptNumber, err := s.reg.SubmitGuess(id, me.ID, []byte(req.Guess))
	var p engine.Puzzle
	if err == nil {
		p, _ = s.reg.Puzzle(id)
	}
	s.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	attemptsSubmitted.Inc()

	ctx := r.Context()
	if attemptNumber == 1 {
		if err := s.st.RegisterPlayer(ctx, id, me.ID, int(p.PlayerCount)-1); err != nil {
			log.Warn().Err(err).Uint64("puzzleId", id).Msg("persist player")
		}
	}
	if err := s.st.AppendAttempt(ctx, id, me.ID, attemptNumber, []byte(req.Guess)); err != nil {
		log.Warn().Err(err).Uint64("puzzleId", id).Msg("persist attempt")
	}
	if err := s.st.SavePuzzle(ctx, p); err != nil {
		log.Warn().Err(err).Uint64("puzzleId", id).Msg("persist puzzle")
	}

	_ = json.NewEncoder(w).Encode(guessRes{AttemptNumber: attemptNumber})
}

// ------------------------------ reveal -------------------------------------

type revealReq struct {
	Answer string `json:"answer"`
}

// handleReveal opens the commitment with the plaintext answer. Admin only.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	id, err := puzzleID(r)
	if err != nil {
		http.Error(w, `{"error":"bad_puzzle_id"}`, http.StatusBadRequest)
		return
	}
	var req revealReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err = s.reg.Reveal(id, []byte(req.Answer))
	var p engine.Puzzle
	if err == nil {
		p, _ = s.reg.Puzzle(id)
	}
	s.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if err := s.st.SavePuzzle(r.Context(), p); err != nil {
		log.Warn().Err(err).Uint64("puzzleId", id).Msg("persist puzzle")
	}
	_ = json.NewEncoder(w).Encode(toPuzzleRes(p))
}

// ----------------------------- finalize ------------------------------------

// handleFinalize scores all attempts and records winners. Admin only.
func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	id, err := puzzleID(r)
	if err != nil {
		http.Error(w, `{"error":"bad_puzzle_id"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err = s.reg.Finalize(id)
	var p engine.Puzzle
	var results []store.PlayerResult
	if err == nil {
		p, _ = s.reg.Puzzle(id)
		players, _ := s.reg.Players(id)
		results = make([]store.PlayerResult, 0, len(players))
		for _, player := range players {
			atts, _ := s.reg.Attempts(id, player)
			results = append(results, store.PlayerResult{
				Player:   player,
				Attempts: atts,
				Winner:   s.reg.IsWinner(id, player),
			})
		}
	}
	s.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	puzzlesFinalized.Inc()
	winnersRecorded.Add(float64(p.WinnerCount))

	if err := s.st.SaveResults(r.Context(), p, results); err != nil {
		log.Warn().Err(err).Uint64("puzzleId", id).Msg("persist results")
	}
	_ = json.NewEncoder(w).Encode(toPuzzleRes(p))
}

// ------------------------------- reads -------------------------------------

// handleGetPuzzle returns puzzle metadata.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	id, err := puzzleID(r)
	if err != nil {
		http.Error(w, `{"error":"bad_puzzle_id"}`, http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	p, err := s.reg.Puzzle(id)
	s.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toPuzzleRes(p))
}

// handleMyAttempts returns the caller's attempts for a puzzle.
func (s *Server) handleMyAttempts(w http.ResponseWriter, r *http.Request) {
	me, err := currentUser(r)
	if err != nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	s.writeAttempts(w, r, me.ID)
}

// handlePlayerAttempts returns any player's attempts for a puzzle.
func (s *Server) handlePlayerAttempts(w http.ResponseWriter, r *http.Request) {
	s.writeAttempts(w, r, chi.URLParam(r, "player"))
}

func (s *Server) writeAttempts(w http.ResponseWriter, r *http.Request, player string) {
	id, err := puzzleID(r)
	if err != nil {
		http.Error(w, `{"error":"bad_puzzle_id"}`, http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	atts, err := s.reg.Attempts(id, player)
	s.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toAttemptRes(atts))
}

// handleIsWinner reports whether a player solved the puzzle.
func (s *Server) handleIsWinner(w http.ResponseWriter, r *http.Request) {
	id, err := puzzleID(r)
	if err != nil {
		http.Error(w, `{"error":"bad_puzzle_id"}`, http.StatusBadRequest)
		return
	}
	player := chi.URLParam(r, "player")
	s.mu.Lock()
	winner := s.reg.IsWinner(id, player)
	s.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]bool{"winner": winner})
}
