package textnorm

// Similarity computes a Ratcliff/Obershelp similarity ratio in [0,1]
// between two strings: twice the number of matching characters over the
// total length, with matches found by recursively locating the longest
// common substring. Used to repair OCR-mangled tickers against the known
// coin list (FLOKL -> FLOKI and the like).
func Similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(a, b)) / float64(total)
}

// matchingChars counts matched characters recursively around the longest
// common substring.
func matchingChars(a, b string) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	count := size
	count += matchingChars(a[:ai], b[:bi])
	count += matchingChars(a[ai+size:], b[bi+size:])
	return count
}

// longestCommonSubstring returns the start offsets and length of the
// longest common substring of a and b.
func longestCommonSubstring(a, b string) (int, int, int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	bestA, bestB, bestLen := 0, 0, 0
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestLen {
					bestLen = curr[j]
					bestA = i - bestLen
					bestB = j - bestLen
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}

	return bestA, bestB, bestLen
}
