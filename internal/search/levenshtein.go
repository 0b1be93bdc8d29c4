package search

// Levenshtein computes the edit distance between a and b: the minimum number
// of single-character insertions, deletions and substitutions transforming
// one into the other. Standard DP recurrence over a single rolling row.
func Levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	curr := make([]int, lb+1)

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			ins := curr[j-1] + 1
			del := prev[j] + 1
			sub := prev[j-1] + cost
			v := ins
			if del < v {
				v = del
			}
			if sub < v {
				v = sub
			}
			curr[j] = v
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
