package fips

import (
	"fmt"
	"math/bits"
)

const (
	monoBitLower = 9654
	monoBitUpper = 10346

	maxRunLen = 36

	pokerM     = 4
	pokerLower = 1.03
	pokerUpper = 57.4

	runBuckets = 6
)

// Inclusive bounds for runs of ones of length 1..5 and >=6.
var (
	runLowerBounds = [runBuckets]int{2267, 1079, 502, 223, 90, 90}
	runUpperBounds = [runBuckets]int{2733, 1421, 748, 402, 223, 223}
)

// MonoBitTest passes when the number of set bits lies in [9654, 10346].
func (b *Bits) MonoBitTest() bool {
	n := onesCount(b)
	return monoBitLower <= n && n <= monoBitUpper
}

// MaxSequenceLenTest passes when no run of equal bits is longer than 36.
func (b *Bits) MaxSequenceLenTest() bool {
	return longestRun(b) <= maxRunLen
}

// PokerTest is the chi-square test over 4-bit nibbles. It passes when the
// statistic lies in [1.03, 57.4].
func (b *Bits) PokerTest() bool {
	x := pokerStatistic(b, pokerM)
	return pokerLower <= x && x <= pokerUpper
}

// SequenceLenTest passes when every bucket of the run-length histogram of
// ones lies within its bounds.
func (b *Bits) SequenceLenTest() bool {
	return firstBadBucket(runLengthCounts(b)) < 0
}

func onesCount(b *Bits) int {
	n := 0
	for _, w := range b.blocks {
		n += bits.OnesCount32(w)
	}
	return n
}

func longestRun(b *Bits) int {
	var ones, zeros, longest int
	for i := 0; i < b.Len(); i++ {
		if b.Bit(i) {
			ones++
			longest = max(longest, zeros)
			zeros = 0
		} else {
			zeros++
			longest = max(longest, ones)
			ones = 0
		}
	}
	return max(longest, ones, zeros)
}

// pokerHistogram tallies consecutive m-bit values, first bit most significant.
// m must divide the sequence length.
func pokerHistogram(b *Bits, m int) []uint64 {
	if b.Len()%m != 0 {
		panic(fmt.Sprintf("fips: poker block size %d does not divide %d bits", m, b.Len()))
	}

	counts := make([]uint64, 1<<m)
	cur, curLen := 0, 0
	for i := 0; i < b.Len(); i++ {
		cur <<= 1
		if b.Bit(i) {
			cur |= 1
		}
		curLen++

		if curLen == m {
			counts[cur]++
			cur, curLen = 0, 0
		}
	}
	return counts
}

// chiSquare computes (len(counts)/k) * sum(n_i^2) - k for k observations.
func chiSquare(counts []uint64, k int) float64 {
	var sum uint64
	for _, n := range counts {
		sum += n * n
	}
	return float64(len(counts))/float64(k)*float64(sum) - float64(k)
}

func pokerStatistic(b *Bits, m int) float64 {
	return chiSquare(pokerHistogram(b, m), b.Len()/m)
}

// runLengthCounts buckets every zero-terminated run of ones. Index 0 holds
// runs of length 1 and the last index holds runs of length runBuckets or
// more. A trailing run with no zero after it is not counted.
func runLengthCounts(b *Bits) [runBuckets]int {
	var counts [runBuckets]int
	run := 0
	for i := 0; i < b.Len(); i++ {
		if b.Bit(i) {
			run++
			continue
		}
		if run != 0 {
			counts[min(run, runBuckets)-1]++
			run = 0
		}
	}
	return counts
}

// firstBadBucket returns the index of the first bucket outside its bounds,
// or -1.
func firstBadBucket(counts [runBuckets]int) int {
	for i, n := range counts {
		if n < runLowerBounds[i] || n > runUpperBounds[i] {
			return i
		}
	}
	return -1
}
