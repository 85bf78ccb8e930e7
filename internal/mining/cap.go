package mining

// Remaining computes the ticket capacity still available this epoch,
// accounting for tickets already finalized and local requests that have
// not reached the remote counters yet. Never negative.
func Remaining(capacity, used, pendingLocal uint64) uint64 {
	if used+pendingLocal >= capacity {
		return 0
	}
	return capacity - used - pendingLocal
}

// Finalizable computes how many pending mines fit into the epoch's
// remaining capacity. Pending mines do not consume capacity until
// finalized, so the remaining figure excludes them.
func Finalizable(pendingOptimistic, capacity, used uint64) uint64 {
	r := Remaining(capacity, used, 0)
	if pendingOptimistic < r {
		return pendingOptimistic
	}
	return r
}
