package fuzzy

// Triangle is a triangular membership function over [0,1] with feet at A and
// C and its peak at B (A <= B <= C). Degenerate shoulders (A == B or B == C)
// are allowed and give a peak on the domain edge.
type Triangle struct {
	A, B, C float64
}

// The three intensity classes used by the threshold estimator.
var (
	Low    = Triangle{A: 0, B: 0, C: 0.5}
	Medium = Triangle{A: 0.3, B: 0.5, C: 0.7}
	High   = Triangle{A: 0.5, B: 1, C: 1}
)

// Eval returns the membership degree of x, in [0,1].
func (t Triangle) Eval(x float64) float64 {
	switch {
	case x == t.B:
		return 1
	case x > t.A && x < t.B:
		return (x - t.A) / (t.B - t.A)
	case x > t.B && x < t.C:
		return (t.C - x) / (t.C - t.B)
	default:
		return 0
	}
}

// Sample evaluates the function on n evenly spaced points of [0,1]
// (inclusive on both ends) and returns the grid and the degrees.
func (t Triangle) Sample(n int) (xs, ys []float64) {
	xs = Linspace(0, 1, n)
	ys = make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = t.Eval(x)
	}
	return xs, ys
}

// Degree samples t on an n-point grid and linearly interpolates the sampled
// curve at x. This is the estimator's notion of membership: for grids that do
// not contain the triangle's corners the result differs slightly from Eval.
func (t Triangle) Degree(x float64, n int) float64 {
	xs, ys := t.Sample(n)
	return Interp(x, xs, ys)
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// Interp linearly interpolates the curve (xs, ys) at x. xs must be
// increasing. Values outside the grid take the nearest end value.
func Interp(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || len(ys) != n {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	span := xs[hi] - xs[lo]
	if span == 0 {
		return ys[lo]
	}
	f := (x - xs[lo]) / span
	return ys[lo] + f*(ys[hi]-ys[lo])
}
