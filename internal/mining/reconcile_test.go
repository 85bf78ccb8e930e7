package mining

import "testing"

func TestMerge(t *testing.T) {
	tests := []struct {
		name        string
		dir         Direction
		pre         uint64
		optimistic  uint64
		polled      uint64
		want        uint64
		wantAdopted bool
	}{
		// Finalize of 3 with pre-op pending 5: expected post value 2.
		{"decrease stale equal", Decrease, 5, 2, 5, 2, false},
		{"decrease stale higher", Decrease, 5, 2, 6, 2, false},
		{"decrease moved", Decrease, 5, 2, 2, 2, true},
		{"decrease moved further", Decrease, 5, 2, 1, 1, true},
		// Mine of 2 with pre-op pending 3: expected post value 5.
		{"increase stale equal", Increase, 3, 5, 3, 5, false},
		{"increase stale lower", Increase, 3, 5, 1, 5, false},
		{"increase moved", Increase, 3, 5, 5, 5, true},
		{"increase moved further", Increase, 3, 5, 7, 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, adopted := Merge(tt.dir, tt.pre, tt.optimistic, tt.polled)
			if got != tt.want || adopted != tt.wantAdopted {
				t.Errorf("Merge(%v, %d, %d, %d) = (%d, %v), want (%d, %v)",
					tt.dir, tt.pre, tt.optimistic, tt.polled,
					got, adopted, tt.want, tt.wantAdopted)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	for _, dir := range []Direction{Decrease, Increase} {
		for pre := uint64(0); pre <= 8; pre++ {
			for polled := uint64(0); polled <= 8; polled++ {
				once, _ := Merge(dir, pre, 4, polled)
				twice, _ := Merge(dir, pre, once, polled)
				if once != twice {
					t.Fatalf("Merge(%v, %d, 4, %d) not idempotent: %d then %d",
						dir, pre, polled, once, twice)
				}
			}
		}
	}
}
