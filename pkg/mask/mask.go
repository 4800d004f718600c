// Package mask models pupil masks over a 2-D pixel grid.
//
// A mask is a boolean grid stored row-major: true marks a pixel outside the
// pupil (excluded), false a pixel inside it. Masks are built once and never
// recomputed; all the geometry is resolved at construction time.
package mask

import (
	"errors"
	"fmt"
	"hash/fnv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"oao24/internal/models"
)

// ErrShapeMismatch is returned when a grid does not match its declared shape
var ErrShapeMismatch = errors.New("mask: shape mismatch")

// Kind identifies the geometry variant that produced a mask
type Kind int

const (
	Base Kind = iota
	Circular
	Annular
)

func (k Kind) String() string {
	switch k {
	case Base:
		return "base"
	case Circular:
		return "circular"
	case Annular:
		return "annular"
	default:
		return "unknown"
	}
}

// PupilMask is the capability set shared by every mask variant, so a mask can
// be used as a selector over any same-shaped image.
type PupilMask interface {
	Kind() Kind
	Shape() models.Shape
	Mask() []bool
	AsMaskedArray() MaskedArray
	Transmission() []int
	InMaskIndices() []int
	Equal(other PupilMask) bool
	Hash() uint64
}

// BaseMask wraps a boolean grid with no geometry attached.
type BaseMask struct {
	shape models.Shape
	mask  []bool
}

// NewBaseMask wraps the supplied grid. The grid is not copied.
func NewBaseMask(shape models.Shape, grid []bool) (*BaseMask, error) {
	if len(grid) != shape.Size() {
		return nil, fmt.Errorf("%w: grid has %d elements, shape %dx%d needs %d",
			ErrShapeMismatch, len(grid), shape.Rows, shape.Cols, shape.Size())
	}
	return &BaseMask{shape: shape, mask: grid}, nil
}

// FromMaskedArray wraps only the exclusion map of a masked array.
func FromMaskedArray(ma MaskedArray) (*BaseMask, error) {
	return NewBaseMask(ma.Shape, ma.Mask)
}

func (m *BaseMask) Kind() Kind { return Base }

func (m *BaseMask) Shape() models.Shape { return m.shape }

// Mask returns the stored grid, true outside the pupil. Treat it as read-only.
func (m *BaseMask) Mask() []bool { return m.mask }

// AsMaskedArray returns a grid of ones paired with the mask as exclusion map
func (m *BaseMask) AsMaskedArray() MaskedArray {
	data := make([]float64, len(m.mask))
	for i := range data {
		data[i] = 1
	}
	return MaskedArray{Shape: m.shape, Data: data, Mask: m.mask}
}

// Transmission returns the mask as 0/1 values, 1 inside the pupil
func (m *BaseMask) Transmission() []int {
	out := make([]int, len(m.mask))
	for i, masked := range m.mask {
		if !masked {
			out[i] = 1
		}
	}
	return out
}

// InMaskIndices returns the ascending row-major indices of pixels inside the pupil
func (m *BaseMask) InMaskIndices() []int {
	idx := []int{}
	for i, masked := range m.mask {
		if !masked {
			idx = append(idx, i)
		}
	}
	return idx
}

// Equal reports whether other has the same shape and an identical grid
func (m *BaseMask) Equal(other PupilMask) bool {
	return Equal(m, other)
}

// Hash is derived from the grid content only; equal masks hash equally
func (m *BaseMask) Hash() uint64 {
	h := fnv.New64a()
	buf := make([]byte, len(m.mask))
	for i, masked := range m.mask {
		if masked {
			buf[i] = 1
		}
	}
	h.Write(buf)
	return h.Sum64()
}

// Equal compares two masks by content. A shape mismatch is inequality, not an error.
func Equal(a, b PupilMask) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Shape() != b.Shape() {
		return false
	}
	ma, mb := a.Mask(), b.Mask()
	if len(ma) != len(mb) {
		return false
	}
	for i := range ma {
		if ma[i] != mb[i] {
			return false
		}
	}
	return true
}

// MaskedArray pairs row-major values with an exclusion map (true = excluded)
type MaskedArray struct {
	Shape models.Shape
	Data  []float64
	Mask  []bool
}

// Apply selects the pixels of values through m. values must have the mask's shape.
func Apply(values mat.Matrix, m PupilMask) (MaskedArray, error) {
	shape := m.Shape()
	rows, cols := values.Dims()
	if rows != shape.Rows || cols != shape.Cols {
		return MaskedArray{}, fmt.Errorf("%w: values are %dx%d, mask is %dx%d",
			ErrShapeMismatch, rows, cols, shape.Rows, shape.Cols)
	}

	data := make([]float64, 0, shape.Size())
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data = append(data, values.At(r, c))
		}
	}
	return MaskedArray{Shape: shape, Data: data, Mask: m.Mask()}, nil
}

// Compressed returns the non-excluded values in row-major order
func (ma MaskedArray) Compressed() []float64 {
	out := []float64{}
	for i, v := range ma.Data {
		if !ma.Mask[i] {
			out = append(out, v)
		}
	}
	return out
}

// Count is the number of non-excluded values
func (ma MaskedArray) Count() int {
	n := 0
	for _, masked := range ma.Mask {
		if !masked {
			n++
		}
	}
	return n
}

// Mean of the non-excluded values; NaN when every value is excluded
func (ma MaskedArray) Mean() float64 {
	return stat.Mean(ma.Compressed(), nil)
}
