package reduction

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"oao24/internal/models"
)

// MedianFrame reduces a stack to one frame by the per-pixel median over the
// frame axis. For an even number of frames the two middle values are
// averaged. A single-frame stack reduces to that frame. A pixel with any NaN
// sample has a NaN median.
func MedianFrame(s models.Stack) (*mat.Dense, error) {
	rows, cols, nFrames := s.Dims()
	if nFrames == 0 || rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: stack is %dx%dx%d", ErrEmptyInput, rows, cols, nFrames)
	}

	out := mat.NewDense(rows, cols, nil)
	samples := make([]float64, nFrames)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for f := 0; f < nFrames; f++ {
				samples[f] = s.Value(r, c, f)
			}
			out.Set(r, c, median(samples))
		}
	}
	return out, nil
}

// median sorts v in place
func median(v []float64) float64 {
	if floats.HasNaN(v) {
		return math.NaN()
	}
	n := len(v)
	if n == 1 {
		return v[0]
	}
	sort.Float64s(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}
