// Package reduction turns a raw exposure sequence into a calibrated master
// image: background subtraction frame by frame, then accumulation over the
// frame axis. No shift-and-add registration is performed.
package reduction

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"oao24/internal/models"
)

var (
	// ErrShapeMismatch is returned when raw frames and the background
	// reference cannot be aligned for subtraction
	ErrShapeMismatch = errors.New("reduction: shape mismatch")

	// ErrEmptyInput is returned for stacks without frames or pixels
	ErrEmptyInput = errors.New("reduction: empty input")
)

// Params controls the optional display of intermediate products.
type Params struct {
	// WantDisplay renders the background reference, raw frame #0 and a
	// clipped linear view of the master image, in addition to the log view
	// that is always rendered.
	WantDisplay bool

	// DisplayMin, DisplayMax bound the background and raw frame views (ADU)
	DisplayMin float64
	DisplayMax float64

	// ClippedMin, ClippedMax bound the linear view of the master image
	ClippedMin float64
	ClippedMax float64
}

// DefaultParams returns the display bounds used for the tutorial camera
func DefaultParams() *Params {
	return &Params{
		DisplayMin: 0,
		DisplayMax: 2000,
		ClippedMin: -10,
		ClippedMax: 100,
	}
}

// MasterImageBuilder runs the background-subtract-and-stack reduction.
// It keeps no state between calls.
type MasterImageBuilder struct {
	params   *Params
	renderer Renderer
	reporter Reporter
	logger   *zap.Logger
}

// NewMasterImageBuilder creates a builder. A nil renderer discards views, a
// nil reporter logs ROI statistics through logger, a nil logger is a no-op.
func NewMasterImageBuilder(params *Params, renderer Renderer, reporter Reporter, logger *zap.Logger) *MasterImageBuilder {
	if params == nil {
		params = DefaultParams()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = NopRenderer{}
	}
	if reporter == nil {
		reporter = NewLogReporter(logger)
	}
	return &MasterImageBuilder{
		params:   params,
		renderer: renderer,
		reporter: reporter,
		logger:   logger,
	}
}

// Build computes the master image of raw against background.
//
// The background is reduced to one reference frame by the per-pixel median
// over its frames; a 2-D background is passed as models.SingleFrame. Every
// raw frame minus the reference is accumulated in float64, whatever the
// storage type of the inputs, and the accumulator is summed over frames.
//
// Parameters:
//   - raw: Raw frame stack, rows × cols × frames
//   - background: Background stack or single frame of the same frame shape
//
// Returns:
//   - The master image as a rows × cols float64 matrix
//   - ErrEmptyInput or ErrShapeMismatch (wrapped) when the inputs cannot be reduced
func (b *MasterImageBuilder) Build(raw, background models.Stack) (*mat.Dense, error) {
	// Step 1: Check the raw stack has at least one non-empty frame
	rows, cols, nFrames := raw.Dims()
	if nFrames == 0 || rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: raw cube is %dx%dx%d", ErrEmptyInput, rows, cols, nFrames)
	}

	// Step 2: Reduce the background to a reference frame
	reference, err := MedianFrame(background)
	if err != nil {
		return nil, fmt.Errorf("background reference: %w", err)
	}
	// Step 3: The reference must match the raw frame shape
	if refRows, refCols := reference.Dims(); refRows != rows || refCols != cols {
		return nil, fmt.Errorf("%w: raw frames are %dx%d, background is %dx%d",
			ErrShapeMismatch, rows, cols, refRows, refCols)
	}

	b.logger.Debug("building master image",
		zap.Int("rows", rows), zap.Int("cols", cols), zap.Int("frames", nFrames))

	// Step 4: Subtract the reference from every raw frame.
	// float64 before any subtraction, so unsigned inputs cannot wrap
	subtracted := models.NewCube[float64](rows, cols, nFrames)
	for f := 0; f < nFrames; f++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				subtracted.Set(r, c, f, raw.Value(r, c, f)-reference.At(r, c))
			}
		}
	}

	// Step 5: Sum over the frame axis and report the corner ROIs
	master := SumFrames(subtracted)
	ROIMean(master, "Master image", b.reporter)

	// Step 6: Optional diagnostic views of the inputs and the clipped master
	if b.params.WantDisplay {
		b.render(View{
			Image:         reference,
			Bounds:        &Bounds{Min: b.params.DisplayMin, Max: b.params.DisplayMax},
			Title:         "Background image",
			ColorbarLabel: "ADU",
		})
		ROIMean(reference, "Background", b.reporter)

		first := models.FrameOf(raw, 0)
		b.render(View{
			Image:         first,
			Bounds:        &Bounds{Min: b.params.DisplayMin, Max: b.params.DisplayMax},
			Title:         "Raw data image #0",
			ColorbarLabel: "ADU",
		})
		ROIMean(first, "Raw image #0", b.reporter)

		b.render(View{
			Image:  master,
			Bounds: &Bounds{Min: b.params.ClippedMin, Max: b.params.ClippedMax},
			Title:  "Master image (linear scale, clipped)",
		})
	}

	// Step 7: Log-scale master view. Dark areas should be around 0
	b.render(View{
		Image:    LogScale(master),
		Title:    "Master image (log scale)",
		Colormap: ColormapInferno,
	})

	return master, nil
}

func (b *MasterImageBuilder) render(v View) {
	if err := b.renderer.Render(v); err != nil {
		b.logger.Warn("failed to render view", zap.String("title", v.Title), zap.Error(err))
	}
}

// SumFrames sums a stack over its frame axis
func SumFrames(s models.Stack) *mat.Dense {
	rows, cols, nFrames := s.Dims()
	out := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum := 0.0
			for f := 0; f < nFrames; f++ {
				sum += s.Value(r, c, f)
			}
			out.Set(r, c, sum)
		}
	}
	return out
}

// LogScale returns log10(max(v, 0) + 1) of every pixel
func LogScale(m mat.Matrix) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Log10(math.Max(v, 0) + 1)
	}, m)
	return out
}
