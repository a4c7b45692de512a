// ABOUTME: Async view state and the generation-token fetch pattern.
// ABOUTME: Stale fetch results are discarded instead of aborting transport.
package tui

// AsyncState tracks one independently-fetched resource. A post body and its
// attached image carry separate states because either can fail alone.
type AsyncState int

const (
	StateIdle AsyncState = iota
	StateLoading
	StateSuccess
	StateError
)

// generation guards fetches keyed by a mutable input. Starting a fetch
// captures Next(); a result is applied only while Current() still matches,
// so a superseded fetch resolves into nothing: no error, no state change.
type generation struct {
	n int
}

// Next invalidates all outstanding fetches and returns the token for a new one.
func (g *generation) Next() int {
	g.n++
	return g.n
}

// Current reports whether the given token is still the latest.
func (g *generation) Current(token int) bool {
	return g.n == token
}
