// Package optics computes the diffraction-limited point spread function of a
// pupil mask.
package optics

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"oao24/pkg/mask"
)

var (
	// ErrInvalidSampling is returned for an oversampling factor below 1
	ErrInvalidSampling = errors.New("optics: invalid sampling")

	// ErrEmptyPupil is returned when the pupil transmits no pixel
	ErrEmptyPupil = errors.New("optics: empty pupil")
)

// PSF returns the far-field intensity of a uniformly illuminated pupil.
//
// The transmission is zero-padded to oversampling times the frame in each
// axis, so one PSF pixel is λ/(oversampling·D_frame). The result is shifted
// so that the optical axis lies at (rows/2, cols/2) and normalized to a peak
// of 1.
func PSF(p mask.PupilMask, oversampling int) (*mat.Dense, error) {
	if oversampling < 1 {
		return nil, fmt.Errorf("%w: oversampling %d", ErrInvalidSampling, oversampling)
	}

	shape := p.Shape()
	tr := p.Transmission()
	rows, cols := shape.Rows*oversampling, shape.Cols*oversampling
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: zero-size frame", ErrEmptyPupil)
	}

	field := make([]complex128, rows*cols)
	transmitted := 0
	for r := 0; r < shape.Rows; r++ {
		for c := 0; c < shape.Cols; c++ {
			if v := tr[r*shape.Cols+c]; v > 0 {
				field[r*cols+c] = complex(float64(v), 0)
				transmitted++
			}
		}
	}
	if transmitted == 0 {
		return nil, ErrEmptyPupil
	}

	fft2D(field, rows, cols)

	intensity := make([]float64, len(field))
	for i, v := range field {
		a := cmplx.Abs(v)
		intensity[i] = a * a
	}

	// the zero-frequency term is the peak: |sum of transmission|²
	peak := float64(transmitted) * float64(transmitted)
	psf := mat.NewDense(rows, cols, fftShift(intensity, rows, cols))
	psf.Scale(1/peak, psf)
	return psf, nil
}
