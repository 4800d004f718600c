package reduction

import "gonum.org/v1/gonum/mat"

// ColormapInferno names the perceptual colormap used for log-scale views.
// An empty Colormap lets the renderer pick its default.
const ColormapInferno = "inferno"

// Bounds are the intensity limits of a view; values outside are clipped
type Bounds struct {
	Min float64
	Max float64
}

// View is one image handed to a Renderer
type View struct {
	Image mat.Matrix

	// Bounds is nil to scale on the data range
	Bounds *Bounds

	Title         string
	ColorbarLabel string
	Colormap      string
}

// Renderer displays views. Errors are logged by the caller, never propagated.
type Renderer interface {
	Render(v View) error
}

// NopRenderer discards every view
type NopRenderer struct{}

func (NopRenderer) Render(View) error { return nil }
