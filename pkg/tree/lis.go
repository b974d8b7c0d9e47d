package tree

import "sort"

// longestIncreasing returns the indices into seq of one longest strictly
// increasing subsequence, in ascending order. O(n log n) patience sorting
// with predecessor links for reconstruction.
func longestIncreasing(seq []int) []int {
	if len(seq) == 0 {
		return nil
	}

	// tails[k] is the index in seq of the smallest tail of any increasing
	// subsequence of length k+1 seen so far.
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))

	for i, v := range seq {
		pos := sort.Search(len(tails), func(j int) bool {
			return seq[tails[j]] >= v
		})
		if pos > 0 {
			prev[i] = tails[pos-1]
		} else {
			prev[i] = -1
		}
		if pos == len(tails) {
			tails = append(tails, i)
		} else {
			tails[pos] = i
		}
	}

	out := make([]int, len(tails))
	k := tails[len(tails)-1]
	for i := len(tails) - 1; i >= 0; i-- {
		out[i] = k
		k = prev[k]
	}
	return out
}
