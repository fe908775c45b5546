// internal/engine/roster.go
//
// Bounded, insertion-ordered set of players for one puzzle. Membership is
// idempotent; iteration order is the order of first submission, which keeps
// the finalize pass deterministic.

package engine

// Roster tracks the distinct players that have submitted at least one guess.
type Roster struct {
	order []string
	index map[string]struct{}
	cap   int
}

// NewRoster constructs an empty roster with the given capacity.
func NewRoster(capacity int) *Roster {
	return &Roster{
		index: make(map[string]struct{}),
		cap:   capacity,
	}
}

// Contains reports whether player is registered.
func (r *Roster) Contains(player string) bool {
	_, ok := r.index[player]
	return ok
}

// InsertIfAbsent registers player if not already present. Returns true when
// the player was newly inserted. Fails with ErrRosterFull only for a new
// player at capacity; re-registering an existing player is always a no-op.
func (r *Roster) InsertIfAbsent(player string) (bool, error) {
	if r.Contains(player) {
		return false, nil
	}
	if len(r.order) >= r.cap {
		return false, ErrRosterFull
	}
	r.order = append(r.order, player)
	r.index[player] = struct{}{}
	return true, nil
}

// Len reports the number of registered players.
func (r *Roster) Len() int {
	return len(r.order)
}

// Players returns the registered players in insertion order. The slice is a
// copy; mutating it does not affect the roster.
func (r *Roster) Players() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
