package fitter

import (
	"math"
	"testing"
)

func TestHaltonDeterministicAndInUnitCube(t *testing.T) {
	t.Parallel()

	a, b := newHalton(4), newHalton(4)
	for i := 0; i < 50; i++ {
		pa, pb := a.Next(), b.Next()
		for d := range pa {
			if pa[d] != pb[d] {
				t.Fatalf("draw %d dim %d: sequences diverge", i, d)
			}
			if pa[d] <= 0 || pa[d] >= 1 {
				t.Fatalf("draw %d dim %d: %g outside (0,1)", i, d, pa[d])
			}
		}
	}

	// First base-2 draws are the classic radical inverses.
	h := newHalton(1)
	want := []float64{0.5, 0.25, 0.75, 0.125}
	for i, w := range want {
		if got := h.Next()[0]; math.Abs(got-w) > 1e-15 {
			t.Fatalf("draw %d: got %g, want %g", i, got, w)
		}
	}
}

func TestSolveLinear(t *testing.T) {
	t.Parallel()

	a := [][]float64{
		{2, 1, 0},
		{1, 3, 1},
		{0, 1, 4},
	}
	b := []float64{3, 9.5, 14}
	x, err := solveLinear(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.5, 2, 3}
	for i := range want {
		if math.Abs(x[i]-want[i]) > 1e-12 {
			t.Errorf("x[%d]: got %g, want %g", i, x[i], want[i])
		}
	}
}

func TestSolveLinearSingular(t *testing.T) {
	t.Parallel()

	a := [][]float64{
		{1, 2},
		{2, 4},
	}
	if _, err := solveLinear(a, []float64{1, 2}); err == nil {
		t.Fatal("singular system must error")
	}
}

func TestLevenbergMarquardtExponentialDecay(t *testing.T) {
	t.Parallel()

	// Fit y = a*exp(-b*x) to exact samples of a=2, b=0.5.
	xs := []float64{0, 0.5, 1, 2, 4}
	f := func(p []float64) ([]float64, error) {
		r := make([]float64, len(xs))
		for i, x := range xs {
			r[i] = p[0]*math.Exp(-p[1]*x) - 2*math.Exp(-0.5*x)
		}
		return r, nil
	}

	p, cost, _, err := levenbergMarquardt(f, []float64{1, 1}, 200, 1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if cost > 1e-8 {
		t.Fatalf("cost %g too high", cost)
	}
	if math.Abs(p[0]-2) > 1e-5 || math.Abs(p[1]-0.5) > 1e-5 {
		t.Errorf("params: got %v, want [2, 0.5]", p)
	}
}
