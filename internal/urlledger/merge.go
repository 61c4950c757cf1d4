package urlledger

import "strings"

// SmartMergeStrings combines two descriptions observed for the same URL.
// If either fully contains the other, the superset wins; otherwise the
// longest suffix of a equal to a prefix of b is spliced so the overlap is
// not duplicated; failing that, the two are concatenated with a separator.
func SmartMergeStrings(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if strings.Contains(a, b) {
		return a
	}
	if strings.Contains(b, a) {
		return b
	}

	overlap := longestSuffixPrefixOverlap(a, b)
	if overlap > 0 {
		return a + b[overlap:]
	}
	return a + " " + b
}

// longestSuffixPrefixOverlap returns the length of the longest suffix of a
// that equals a prefix of b.
func longestSuffixPrefixOverlap(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return n
		}
	}
	return 0
}
