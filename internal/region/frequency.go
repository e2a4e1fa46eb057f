package region

// Counts tallies regions by comparison key, reporting each under the first
// normalized spelling seen.
func Counts(regions []string) map[string]int {
	names := make(map[string]string)
	counts := make(map[string]int)
	for _, r := range regions {
		n := Normalize(r)
		if n == "" {
			continue
		}
		key := Key(n)
		if _, ok := names[key]; !ok {
			names[key] = n
		}
		counts[names[key]]++
	}
	return counts
}

// MostFrequent returns the most common normalized region. Ties go to the
// region that reached the winning count first while scanning in order.
func MostFrequent(regions []string) (string, bool) {
	names := make(map[string]string)
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, r := range regions {
		n := Normalize(r)
		if n == "" {
			continue
		}
		key := Key(n)
		if _, ok := names[key]; !ok {
			names[key] = n
		}
		counts[key]++
		if counts[key] > bestCount {
			best, bestCount = names[key], counts[key]
		}
	}
	return best, bestCount > 0
}
