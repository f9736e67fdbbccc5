package virtual

// BuildPrefixSums returns the cumulative offsets of ids: element 0 is 0 and
// element i+1 is element i plus heightOf(ids[i]). The result has len(ids)+1
// elements and its last element is the total content height. Each call
// returns a new slice.
func BuildPrefixSums[K comparable](ids []K, heightOf func(K) float64) []float64 {
	prefix := make([]float64, 1, len(ids)+1)
	var total float64
	for _, id := range ids {
		total += heightOf(id)
		prefix = append(prefix, total)
	}
	return prefix
}
