package mask

import (
	"fmt"

	"oao24/internal/models"
)

// AnnularMask is a ring-shaped pupil: an outer disk with a central obstruction.
// With a zero inner radius it is identical to a CircularMask.
//
// innerRadius <= radius is not enforced; an inner radius reaching the outer
// one leaves every pixel outside.
type AnnularMask struct {
	BaseMask
	geometry
	innerRadius float64
}

// NewAnnularMask computes a ring mask over a frame of the given shape
func NewAnnularMask(shape models.Shape, innerRadius float64, opts ...Option) *AnnularMask {
	g := resolveGeometry(shape, opts)

	inside := insideDisk(shape, g.radius, g.center)
	if innerRadius > 0 {
		obstruction := NewCircularMask(shape, WithRadius(innerRadius), WithCenter(g.center.Row, g.center.Col))
		for _, i := range obstruction.InMaskIndices() {
			inside[i] = false
		}
	}

	return &AnnularMask{
		BaseMask:    BaseMask{shape: shape, mask: invert(inside)},
		geometry:    g,
		innerRadius: innerRadius,
	}
}

func (m *AnnularMask) Kind() Kind { return Annular }

// InnerRadius is the radius of the central obstruction in pixels
func (m *AnnularMask) InnerRadius() float64 { return m.innerRadius }

func (m *AnnularMask) String() string {
	return fmt.Sprintf("shape [%d %d], radius %f, center [%g %g], inradius %f",
		m.shape.Rows, m.shape.Cols, m.radius, m.center.Row, m.center.Col, m.innerRadius)
}
