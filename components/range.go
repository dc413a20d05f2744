package components

// Range is a half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Partition splits [0, n) into t contiguous ranges, range i being
// [n*i/t, n*(i+1)/t). t is clamped to [1, n] so no range is empty.
// n must be at least 1.
func Partition(n, t int) []Range {
	if t < 1 {
		t = 1
	}
	if t > n {
		t = n
	}
	ranges := make([]Range, t)
	for i := range ranges {
		ranges[i] = Range{
			Start: n * i / t,
			End:   n * (i + 1) / t,
		}
	}
	return ranges
}
