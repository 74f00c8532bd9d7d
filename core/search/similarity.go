package search

// Ratio computes Ratcliff/Obershelp similarity between two strings: twice
// the number of matching characters divided by the total length. Matching
// characters are found by recursively locating the longest common substring
// and matching to its left and right. Operates on runes so CJK text scores
// correctly.
func Ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	if len(ar)+len(br) == 0 {
		return 0
	}
	matches := matchingRunes(ar, br)
	return 2 * float64(matches) / float64(len(ar)+len(br))
}

func matchingRunes(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingRunes(a[:i], b[:j])
	total += matchingRunes(a[i+size:], b[j+size:])
	return total
}

// longestMatch finds the longest matching block, preferring the earliest
// occurrence in a, then in b, on ties.
func longestMatch(a, b []rune) (bestI, bestJ, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// positions of each rune in b, for skipping non-matches
	positions := make(map[rune][]int, len(b))
	for j, r := range b {
		positions[r] = append(positions[r], j)
	}

	// lengths[j] is the length of the match ending at a[i-1], b[j-1]
	lengths := make(map[int]int)
	for i := range a {
		next := make(map[int]int, len(lengths))
		for _, j := range positions[a[i]] {
			size := lengths[j-1] + 1
			next[j] = size
			if size > bestSize {
				bestI, bestJ, bestSize = i-size+1, j-size+1, size
			}
		}
		lengths = next
	}
	return bestI, bestJ, bestSize
}
