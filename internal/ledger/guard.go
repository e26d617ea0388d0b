package ledger

import "sync/atomic"

// guard is the single non-reentrant flag a ledger instance shares across
// all of its mutating entry points. A collaborator calling back into the
// ledger while an operation is in flight is rejected with ErrReentrantCall.
type guard struct {
	locked atomic.Bool
}

// enter acquires the guard. The returned release must be deferred
// immediately so the guard is released on every exit path, including
// failure paths.
func (g *guard) enter() (release func(), err error) {
	if !g.locked.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	return func() { g.locked.Store(false) }, nil
}
