package mining

// Direction is the movement an optimistic update expects the remote
// counter to make once the write propagates.
type Direction int

const (
	// Decrease: the counter should shrink (pending mines after a
	// finalize or claim).
	Decrease Direction = iota
	// Increase: the counter should grow (pending mines after a mine,
	// used tickets after a finalize).
	Increase
)

func (d Direction) String() string {
	if d == Decrease {
		return "decrease"
	}
	return "increase"
}

// Merge reconciles a freshly polled remote counter with the held
// optimistic value. The read path may lag behind a confirmed write, so a
// polled value that has not yet moved past the pre-operation value is
// treated as stale and the optimistic estimate wins. A polled value that
// has moved in the expected direction already reflects the operation,
// net of anything else that happened, and is adopted as authoritative.
//
// The second return reports whether polled was adopted; callers clear
// their reconciliation baseline once it is.
func Merge(dir Direction, pre, optimistic, polled uint64) (uint64, bool) {
	stale := false
	switch dir {
	case Decrease:
		stale = polled >= pre
	case Increase:
		stale = polled <= pre
	}
	if stale {
		return optimistic, false
	}
	return polled, true
}
