package fitter

// halton generates the deterministic low-discrepancy Halton sequence in
// [0,1)^dim using the first dim primes as bases. The same dimension and
// draw index always produce the same point, which keeps multi-start fits
// reproducible across runs.
type halton struct {
	bases []int
	index int
}

var haltonPrimes = []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}

func newHalton(dim int) *halton {
	if dim > len(haltonPrimes) {
		dim = len(haltonPrimes)
	}
	return &halton{bases: haltonPrimes[:dim]}
}

// Next returns the next point of the sequence. The first draw uses index 1;
// index 0 is skipped because it maps to the origin in every dimension.
func (h *halton) Next() []float64 {
	h.index++
	point := make([]float64, len(h.bases))
	for d, base := range h.bases {
		point[d] = radicalInverse(h.index, base)
	}
	return point
}

func radicalInverse(n, base int) float64 {
	inv := 0.0
	f := 1.0 / float64(base)
	for n > 0 {
		inv += f * float64(n%base)
		n /= base
		f /= float64(base)
	}
	return inv
}
