package optics

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2D performs an in-place 2-D discrete Fourier transform of a row-major
// complex grid of rows × cols, transforming every row then every column.
// The transform is unnormalized, as gonum's Coefficients is.
//
// Parameters:
//   - data: Grid samples in row-major order, overwritten with the spectrum
//   - rows, cols: Grid dimensions; any sizes are accepted
func fft2D(data []complex128, rows, cols int) {
	// Row-wise FFT
	rowFFT := fourier.NewCmplxFFT(cols)
	row := make([]complex128, cols)
	for r := 0; r < rows; r++ {
		// Transform a copy of the row back into place
		copy(row, data[r*cols:(r+1)*cols])
		rowFFT.Coefficients(data[r*cols:(r+1)*cols], row)
	}

	// Column-wise FFT over the row spectra
	colFFT := fourier.NewCmplxFFT(rows)
	colIn := make([]complex128, rows)
	colOut := make([]complex128, rows)
	for c := 0; c < cols; c++ {
		// Gather the column, transform it, scatter it back
		for r := 0; r < rows; r++ {
			colIn[r] = data[r*cols+c]
		}
		colFFT.Coefficients(colOut, colIn)
		for r := 0; r < rows; r++ {
			data[r*cols+c] = colOut[r]
		}
	}
}

// fftShift moves the zero-frequency sample of a rows × cols grid to (rows/2, cols/2)
func fftShift(data []float64, rows, cols int) []float64 {
	out := make([]float64, len(data))
	for r := 0; r < rows; r++ {
		sr := (r + rows/2) % rows
		for c := 0; c < cols; c++ {
			sc := (c + cols/2) % cols
			out[sr*cols+sc] = data[r*cols+c]
		}
	}
	return out
}
