package trend

import "math"

// Fit is an ordinary least-squares line through (year, value) points.
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r_squared"`
	SSR       float64 `json:"ssr"`
	N         int     `json:"n"`
}

// At evaluates the fitted line.
func (f Fit) At(year float64) float64 {
	return f.Slope*year + f.Intercept
}

// StdErr is the residual standard error √(SSR/(n−2)). It is zero for two or
// fewer points.
func (f Fit) StdErr() float64 {
	if f.N <= 2 {
		return 0
	}
	return math.Sqrt(f.SSR / float64(f.N-2))
}

// LeastSquares fits the points. A series with no spread in value has
// R² = 1: the line explains it exactly.
func LeastSquares(points []Point) Fit {
	n := len(points)
	fit := Fit{N: n}
	if n == 0 {
		return fit
	}

	var sx, sy float64
	for _, p := range points {
		sx += float64(p.Year)
		sy += p.Value
	}
	mx, my := sx/float64(n), sy/float64(n)

	var sxy, sxx, syy float64
	for _, p := range points {
		dx, dy := float64(p.Year)-mx, p.Value-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	if sxx == 0 {
		fit.Intercept = my
	} else {
		fit.Slope = sxy / sxx
		fit.Intercept = my - fit.Slope*mx
	}

	for _, p := range points {
		r := p.Value - fit.At(float64(p.Year))
		fit.SSR += r * r
	}

	switch {
	case syy == 0:
		fit.R2 = 1
	default:
		fit.R2 = math.Max(0, 1-fit.SSR/syy)
	}
	return fit
}
