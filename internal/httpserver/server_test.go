package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/System625/StellarCade/apps/go-resolver/internal/config"
	"github.com/System625/StellarCade/apps/go-resolver/internal/engine"
	"github.com/System625/StellarCade/apps/go-resolver/internal/events"
	"github.com/System625/StellarCade/apps/go-resolver/internal/store"
)

const adminPassword = "admin-pass-123"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))
	require.NoError(t, EnsureAdmin(db, "admin", adminPassword))

	cfg := config.Config{
		JWTSecret:      "test-secret",
		JWTExpiresDays: 1,
		CookieName:     "stellarcade_token",
		ClientOrigin:   "http://localhost:5173",
	}
	return New(engine.NewRegistry(events.Nop{}), store.NewMemory(), db, cfg)
}

// doJSON issues a request against the server router. A non-empty token is
// sent as a bearer header.
func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// login returns the token and user id for the given credentials.
func login(t *testing.T, s *Server, username, password string) (token, id string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	return body["token"].(string), body["id"].(string)
}

// signup creates a player account and returns its token and user id.
func signup(t *testing.T, s *Server, username string) (token, id string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": username, "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	return body["token"].(string), body["id"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestPuzzleLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin, _ := login(t, s, "admin", adminPassword)
	p1, p1ID := signup(t, s, "player_one")
	_, p2ID := signup(t, s, "player_two")
	p2, _ := login(t, s, "player_two", "hunter2hunter2")

	answer := "ABCDE"
	commitment := engine.Seal([]byte(answer))

	rec := doJSON(t, s, http.MethodPost, "/puzzles", admin, map[string]any{
		"puzzleId": 1, "commitment": commitment.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	assert.Equal(t, "open", created["state"])
	assert.Empty(t, created["answer"])

	// Two guesses for p1, one for p2.
	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/guesses", p1, map[string]string{"guess": "WRONG"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decodeBody(t, rec)["attemptNumber"])
	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/guesses", p1, map[string]string{"guess": answer})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["attemptNumber"])
	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/guesses", p2, map[string]string{"guess": "ZZZZZ"})
	require.Equal(t, http.StatusOK, rec.Code)

	// No scores visible before finalize.
	rec = doJSON(t, s, http.MethodGet, "/puzzles/1/attempts/mine", p1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var attempts []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attempts))
	require.Len(t, attempts, 2)
	assert.Empty(t, attempts[0]["scores"])

	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/reveal", admin, map[string]string{"answer": answer})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "revealed", decodeBody(t, rec)["state"])

	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/finalize", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	finalized := decodeBody(t, rec)
	assert.Equal(t, "finalized", finalized["state"])
	assert.Equal(t, float64(1), finalized["winnerCount"])
	assert.Equal(t, float64(2), finalized["playerCount"])
	assert.Equal(t, answer, finalized["answer"])

	// Scored attempts and winner flags, by user id.
	rec = doJSON(t, s, http.MethodGet, "/puzzles/1/players/"+p1ID+"/attempts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attempts))
	require.Len(t, attempts, 2)
	assert.Equal(t, []any{float64(2), float64(2), float64(2), float64(2), float64(2)}, attempts[1]["scores"])

	rec = doJSON(t, s, http.MethodGet, "/puzzles/1/players/"+p1ID+"/winner", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"winner":true}`, rec.Body.String())
	rec = doJSON(t, s, http.MethodGet, "/puzzles/1/players/"+p2ID+"/winner", "", nil)
	assert.JSONEq(t, `{"winner":false}`, rec.Body.String())
}

func TestAuthorizationMatrix(t *testing.T) {
	s := newTestServer(t)
	admin, _ := login(t, s, "admin", adminPassword)
	player, _ := signup(t, s, "just_a_player")

	commitment := engine.Seal([]byte("ABCDE")).String()
	createBody := map[string]any{"puzzleId": 1, "commitment": commitment}

	// Unauthenticated and bad-token writes are rejected outright.
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, s, http.MethodPost, "/puzzles", "", createBody).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, s, http.MethodPost, "/puzzles", "garbage", createBody).Code)
	assert.Equal(t, http.StatusUnauthorized,
		doJSON(t, s, http.MethodPost, "/puzzles/1/guesses", "", map[string]string{"guess": "ABCDE"}).Code)

	// Players cannot perform lifecycle transitions.
	assert.Equal(t, http.StatusForbidden, doJSON(t, s, http.MethodPost, "/puzzles", player, createBody).Code)
	assert.Equal(t, http.StatusForbidden,
		doJSON(t, s, http.MethodPost, "/puzzles/1/reveal", player, map[string]string{"answer": "ABCDE"}).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, s, http.MethodPost, "/puzzles/1/finalize", player, nil).Code)

	// The admin token works where the player token did not.
	assert.Equal(t, http.StatusOK, doJSON(t, s, http.MethodPost, "/puzzles", admin, createBody).Code)

	// Reads are public.
	assert.Equal(t, http.StatusOK, doJSON(t, s, http.MethodGet, "/puzzles/1", "", nil).Code)
}

func TestEngineErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)
	admin, _ := login(t, s, "admin", adminPassword)
	player, _ := signup(t, s, "status_prober")

	answer := "ABCDE"
	createBody := map[string]any{"puzzleId": 1, "commitment": engine.Seal([]byte(answer)).String()}
	require.Equal(t, http.StatusOK, doJSON(t, s, http.MethodPost, "/puzzles", admin, createBody).Code)

	// Unknown puzzle.
	rec := doJSON(t, s, http.MethodGet, "/puzzles/99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "puzzle_not_found")

	// Duplicate create.
	rec = doJSON(t, s, http.MethodPost, "/puzzles", admin, createBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "puzzle_exists")

	// Malformed commitment.
	rec = doJSON(t, s, http.MethodPost, "/puzzles", admin, map[string]any{"puzzleId": 2, "commitment": "zz"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Wrong guess length.
	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/guesses", player, map[string]string{"guess": "ABCD"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_word_length")

	// Finalize before reveal.
	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/finalize", admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "answer_not_revealed")

	// Wrong answer at reveal; puzzle stays open for the real one.
	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/reveal", admin, map[string]string{"answer": "FGHIJ"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "commitment_mismatch")
	require.Equal(t, http.StatusOK, doJSON(t, s, http.MethodPost, "/puzzles/1/reveal", admin, map[string]string{"answer": answer}).Code)

	// Guesses after reveal.
	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/guesses", player, map[string]string{"guess": answer})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "puzzle_not_open")

	// Double finalize.
	require.Equal(t, http.StatusOK, doJSON(t, s, http.MethodPost, "/puzzles/1/finalize", admin, nil).Code)
	rec = doJSON(t, s, http.MethodPost, "/puzzles/1/finalize", admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_finalized")
}

func TestGuessIdentityComesFromToken(t *testing.T) {
	s := newTestServer(t)
	admin, _ := login(t, s, "admin", adminPassword)
	player, playerID := signup(t, s, "token_identity")

	createBody := map[string]any{"puzzleId": 1, "commitment": engine.Seal([]byte("ABCDE")).String()}
	require.Equal(t, http.StatusOK, doJSON(t, s, http.MethodPost, "/puzzles", admin, createBody).Code)

	// The request body carries only the guess; the submitting identity is
	// whatever the token says, so a spoofed player field changes nothing.
	rec := doJSON(t, s, http.MethodPost, "/puzzles/1/guesses", player,
		map[string]string{"guess": "CRANE", "player": "someone_else"})
	require.Equal(t, http.StatusOK, rec.Code)

	var attempts []map[string]any
	rec = doJSON(t, s, http.MethodGet, "/puzzles/1/players/"+playerID+"/attempts", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attempts))
	assert.Len(t, attempts, 1)

	rec = doJSON(t, s, http.MethodGet, "/puzzles/1/players/someone_else/attempts", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attempts))
	assert.Empty(t, attempts)
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)

	// Too-short username.
	rec := doJSON(t, s, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "ab", "password": "hunter2hunter2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Too-short password.
	rec = doJSON(t, s, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "valid_name", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate username.
	signup(t, s, "taken_name")
	rec = doJSON(t, s, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "taken_name", "password": "hunter2hunter2"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password at login.
	rec = doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "taken_name", "password": "not_the_password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
