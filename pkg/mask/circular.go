package mask

import (
	"fmt"

	"oao24/internal/models"
)

// Center is a pupil center in pixel units, row (Y) first
type Center struct {
	Row float64
	Col float64
}

// Option sets an optional geometry parameter of a circular or annular mask
type Option func(*geometry)

// WithRadius sets the pupil radius in pixels
func WithRadius(r float64) Option {
	return func(g *geometry) {
		g.radius = r
		g.radiusSet = true
	}
}

// WithCenter sets the pupil center in pixels, row first
func WithCenter(row, col float64) Option {
	return func(g *geometry) {
		g.center = Center{Row: row, Col: col}
		g.centerSet = true
	}
}

type geometry struct {
	radius    float64
	center    Center
	radiusSet bool
	centerSet bool
}

// resolveGeometry applies the options and fills in the defaults: half the
// shorter frame side for the radius, the frame's geometric center for the center.
func resolveGeometry(shape models.Shape, opts []Option) geometry {
	g := geometry{}
	for _, opt := range opts {
		opt(&g)
	}
	if !g.radiusSet {
		g.radius = float64(min(shape.Rows, shape.Cols)) / 2
	}
	if !g.centerSet {
		g.center = Center{Row: 0.5 * float64(shape.Rows), Col: 0.5 * float64(shape.Cols)}
	}
	return g
}

// Radius of the pupil in pixels
func (g geometry) Radius() float64 { return g.radius }

// Center of the pupil, row first
func (g geometry) Center() Center { return g.center }

// insideDisk evaluates the disk inclusion test at pixel centers (i+0.5, j+0.5).
// A negative radius selects nothing.
func insideDisk(shape models.Shape, radius float64, center Center) []bool {
	inside := make([]bool, shape.Size())
	if radius < 0 {
		return inside
	}
	r2 := radius * radius
	for i := 0; i < shape.Rows; i++ {
		dy := float64(i) + 0.5 - center.Row
		for j := 0; j < shape.Cols; j++ {
			dx := float64(j) + 0.5 - center.Col
			inside[i*shape.Cols+j] = dx*dx+dy*dy <= r2
		}
	}
	return inside
}

func invert(inside []bool) []bool {
	out := make([]bool, len(inside))
	for i, in := range inside {
		out[i] = !in
	}
	return out
}

// CircularMask is a disk-shaped pupil.
//
// Geometry is not validated: a radius larger than the frame or a center
// outside it simply yields a fully inside or fully outside mask.
type CircularMask struct {
	BaseMask
	geometry
}

// NewCircularMask computes a disk mask over a frame of the given shape
func NewCircularMask(shape models.Shape, opts ...Option) *CircularMask {
	g := resolveGeometry(shape, opts)
	return &CircularMask{
		BaseMask: BaseMask{shape: shape, mask: invert(insideDisk(shape, g.radius, g.center))},
		geometry: g,
	}
}

func (m *CircularMask) Kind() Kind { return Circular }

func (m *CircularMask) String() string {
	return fmt.Sprintf("shape [%d %d], radius %f, center [%g %g]",
		m.shape.Rows, m.shape.Cols, m.radius, m.center.Row, m.center.Col)
}
