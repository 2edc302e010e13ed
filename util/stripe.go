package util

import "math/bits"

// Stripe describes round-robin placement of Count entries over Lanes lanes.
// Entry i lives in lane i%Lanes at row i/Lanes.
type Stripe struct {
	Count int
	Lanes int
}

// Rows is the number of rows in the longest lane, ceil(Count/Lanes).
func (s Stripe) Rows() int {
	return CeilDiv(s.Count, s.Lanes)
}

// Position returns the lane and row for the entry at index i.
func (s Stripe) Position(i int) (lane, row int) {
	return i % s.Lanes, i / s.Lanes
}

// LaneLength returns how many entries end up in the given lane.
// Remainder rows go to the lowest numbered lanes first.
func (s Stripe) LaneLength(lane int) int {
	n := s.Count / s.Lanes
	if lane < s.Count%s.Lanes {
		n++
	}
	return n
}

// CeilDiv divides rounding up. d must be positive.
func CeilDiv(n, d int) int {
	return (n + d - 1) / d
}

// BitLength is the number of bits needed to represent v, 0 for 0.
func BitLength(v uint64) int {
	return bits.Len64(v)
}

// CeilLog2 returns ceil(log2(n)) for n >= 1, and 0 for n <= 1.
func CeilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(uint64(n - 1))
}
