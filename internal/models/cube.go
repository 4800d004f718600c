package models

import (
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/mat"
)

// Shape is the extent of a 2-D frame, rows × columns
type Shape struct {
	Rows int
	Cols int
}

// Size returns the number of pixels in a frame of this shape
func (s Shape) Size() int {
	return s.Rows * s.Cols
}

// Number is any element type a camera frame may be stored in
type Number interface {
	constraints.Integer | constraints.Float
}

// Stack is a read-only view of a frame stack (rows × columns × frames).
// Values are always read widened to float64, so callers never do arithmetic
// in the stack's storage type.
type Stack interface {
	Dims() (rows, cols, frames int)
	Value(row, col, frame int) float64
}

// Cube is a stack of 2-D frames indexed along a third, last axis.
type Cube[T Number] struct {
	// Rows, Cols are the frame dimensions
	Rows, Cols int

	// Frames is the number of frames in the stack
	Frames int

	// Data holds the samples row-major with the frame axis varying fastest:
	// element (r, c, f) lives at (r*Cols+c)*Frames+f
	Data []T
}

// NewCube allocates a zero-filled cube
func NewCube[T Number](rows, cols, frames int) *Cube[T] {
	return &Cube[T]{
		Rows:   rows,
		Cols:   cols,
		Frames: frames,
		Data:   make([]T, rows*cols*frames),
	}
}

func (c *Cube[T]) index(row, col, frame int) int {
	return (row*c.Cols+col)*c.Frames + frame
}

// At returns the stored sample at (row, col, frame)
func (c *Cube[T]) At(row, col, frame int) T { return c.Data[c.index(row, col, frame)] }

// Set stores v at (row, col, frame)
func (c *Cube[T]) Set(row, col, frame int, v T) { c.Data[c.index(row, col, frame)] = v }

// Dims implements Stack
func (c *Cube[T]) Dims() (rows, cols, frames int) { return c.Rows, c.Cols, c.Frames }

// Value implements Stack
func (c *Cube[T]) Value(row, col, frame int) float64 { return float64(c.At(row, col, frame)) }

// Shape returns the per-frame shape
func (c *Cube[T]) Shape() Shape { return Shape{Rows: c.Rows, Cols: c.Cols} }

// SetFrame copies a 2-D frame into the cube at the given frame index
func (c *Cube[T]) SetFrame(frame int, values [][]T) {
	for r := range values {
		for col, v := range values[r] {
			c.Set(r, col, frame, v)
		}
	}
}

type singleFrame struct {
	m mat.Matrix
}

// SingleFrame wraps a 2-D frame as a stack holding one frame
func SingleFrame(m mat.Matrix) Stack {
	return singleFrame{m: m}
}

func (s singleFrame) Dims() (rows, cols, frames int) {
	r, c := s.m.Dims()
	return r, c, 1
}

func (s singleFrame) Value(row, col, frame int) float64 {
	return s.m.At(row, col)
}

// FrameOf extracts one frame of a stack as a float64 matrix.
// The stack must have non-zero rows and columns.
func FrameOf(s Stack, frame int) *mat.Dense {
	rows, cols, _ := s.Dims()
	out := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, s.Value(r, c, frame))
		}
	}
	return out
}
