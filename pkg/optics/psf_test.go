package optics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oao24/internal/models"
	"oao24/pkg/mask"
)

// TestPSFPeak verifies normalization and the location of the optical axis
func TestPSFPeak(t *testing.T) {
	p := mask.NewCircularMask(models.Shape{Rows: 16, Cols: 16}, mask.WithRadius(6))
	psf, err := PSF(p, 2)
	require.NoError(t, err)

	rows, cols := psf.Dims()
	require.Equal(t, 32, rows)
	require.Equal(t, 32, cols)

	assert.InDelta(t, 1.0, psf.At(16, 16), 1e-12)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v := psf.At(r, c); v > 1+1e-12 || v < 0 {
				t.Fatalf("PSF value %g at (%d,%d) out of [0, 1]", v, r, c)
			}
		}
	}
}

// TestPSFCentrosymmetric relies on the transform of a real pupil being Hermitian
func TestPSFCentrosymmetric(t *testing.T) {
	p := mask.NewAnnularMask(models.Shape{Rows: 12, Cols: 20}, 2, mask.WithRadius(5), mask.WithCenter(5.3, 9.1))
	psf, err := PSF(p, 2)
	require.NoError(t, err)

	rows, cols := psf.Dims()
	cr, cc := rows/2, cols/2
	for dr := -cr + 1; dr < cr; dr++ {
		for dc := -cc + 1; dc < cc; dc++ {
			a := psf.At(cr+dr, cc+dc)
			b := psf.At(cr-dr, cc-dc)
			if math.Abs(a-b) > 1e-9 {
				t.Fatalf("PSF not symmetric at offset (%d,%d): %g vs %g", dr, dc, a, b)
			}
		}
	}
}

// TestPSFParseval checks the total energy against the transmitted pixel count
func TestPSFParseval(t *testing.T) {
	p := mask.NewCircularMask(models.Shape{Rows: 8, Cols: 8}, mask.WithRadius(3))
	n := float64(len(p.InMaskIndices()))

	psf, err := PSF(p, 3)
	require.NoError(t, err)

	rows, cols := psf.Dims()
	total := 0.0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			total += psf.At(r, c)
		}
	}
	// sum |F|² = N·sum |f|² = N·n, normalized by n²
	assert.InDelta(t, float64(rows*cols)/n, total, 1e-6)
}

func TestPSFErrors(t *testing.T) {
	p := mask.NewCircularMask(models.Shape{Rows: 8, Cols: 8})
	_, err := PSF(p, 0)
	assert.ErrorIs(t, err, ErrInvalidSampling)

	empty := mask.NewCircularMask(models.Shape{Rows: 8, Cols: 8}, mask.WithRadius(-1))
	_, err = PSF(empty, 2)
	assert.ErrorIs(t, err, ErrEmptyPupil)
}

func TestFFTShift(t *testing.T) {
	// zero frequency at (0,0) moves to (rows/2, cols/2)
	in := []float64{
		9, 1, 2,
		3, 4, 5,
	}
	out := fftShift(in, 2, 3)
	assert.Equal(t, 9.0, out[1*3+1])
	assert.Len(t, out, 6)
}
