package models

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestCubeLayout verifies that the frame axis varies fastest in Data
func TestCubeLayout(t *testing.T) {
	c := NewCube[uint16](2, 3, 4)

	c.Set(1, 2, 3, 7)
	if got := c.Data[(1*3+2)*4+3]; got != 7 {
		t.Errorf("Expected sample 7 at flat index %d, got %d", (1*3+2)*4+3, got)
	}

	rows, cols, frames := c.Dims()
	if rows != 2 || cols != 3 || frames != 4 {
		t.Errorf("Expected dims (2,3,4), got (%d,%d,%d)", rows, cols, frames)
	}

	if s := c.Shape(); s != (Shape{Rows: 2, Cols: 3}) || s.Size() != 6 {
		t.Errorf("Unexpected shape %+v", s)
	}
}

// TestCubeValueWidens ensures values are read without wrapping in the storage type
func TestCubeValueWidens(t *testing.T) {
	c := NewCube[uint8](1, 1, 2)
	c.Set(0, 0, 0, 250)
	c.Set(0, 0, 1, 255)

	sum := c.Value(0, 0, 0) + c.Value(0, 0, 1)
	if sum != 505 {
		t.Errorf("Expected widened sum 505, got %f", sum)
	}
}

// TestSingleFrame verifies a 2-D matrix behaves as a one-frame stack
func TestSingleFrame(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	s := SingleFrame(m)

	rows, cols, frames := s.Dims()
	if rows != 2 || cols != 2 || frames != 1 {
		t.Fatalf("Expected dims (2,2,1), got (%d,%d,%d)", rows, cols, frames)
	}

	frame := FrameOf(s, 0)
	if !mat.Equal(frame, m) {
		t.Errorf("Expected extracted frame to equal source matrix")
	}
}

// TestFrameOf verifies frame extraction from a cube
func TestFrameOf(t *testing.T) {
	c := NewCube[int16](2, 2, 2)
	c.SetFrame(1, [][]int16{{1, -2}, {3, -4}})

	frame := FrameOf(c, 1)
	want := mat.NewDense(2, 2, []float64{1, -2, 3, -4})
	if !mat.Equal(frame, want) {
		t.Errorf("Expected frame %v, got %v", mat.Formatted(want), mat.Formatted(frame))
	}

	zero := FrameOf(c, 0)
	if mat.Sum(zero) != 0 {
		t.Errorf("Expected untouched frame to be zero")
	}
}
