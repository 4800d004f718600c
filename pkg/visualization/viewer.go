package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"oao24/internal/models"
)

// Viewer exports the frames of a raw data cube as grayscale images, so a
// sequence can be inspected frame by frame before reduction.
type Viewer struct {
	// stack holds the frames to export
	stack models.Stack

	// dimensions of the stack
	rows   int
	cols   int
	frames int

	// lo, hi is the intensity range shared by every frame
	lo float64
	hi float64
}

// NewViewer creates a viewer over a frame stack. All frames are scaled on the
// stack's global range so that frame-to-frame brightness changes stay visible.
// Non-finite samples do not contribute to the range.
func NewViewer(stack models.Stack) *Viewer {
	rows, cols, frames := stack.Dims()
	v := &Viewer{
		stack:  stack,
		rows:   rows,
		cols:   cols,
		frames: frames,
		lo:     math.Inf(1),
		hi:     math.Inf(-1),
	}

	for f := 0; f < frames; f++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				val := stack.Value(r, c, f)
				if math.IsNaN(val) || math.IsInf(val, 0) {
					continue
				}
				v.lo = math.Min(v.lo, val)
				v.hi = math.Max(v.hi, val)
			}
		}
	}
	return v
}

// ExtractFrame renders one frame as a 16-bit grayscale image, row 0 at the top
func (v *Viewer) ExtractFrame(index int) (image.Image, error) {
	if index < 0 || index >= v.frames {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", index, v.frames)
	}

	span := v.hi - v.lo

	img := image.NewGray16(image.Rect(0, 0, v.cols, v.rows))
	for r := 0; r < v.rows; r++ {
		for c := 0; c < v.cols; c++ {
			value := 0.0
			if span > 0 {
				value = (v.stack.Value(r, c, index) - v.lo) / span * 65535
			}
			if math.IsNaN(value) {
				value = 0
			}
			img.SetGray16(c, r, color.Gray16{Y: uint16(math.Max(0, math.Min(65535, value)))})
		}
	}
	return img, nil
}

// SaveFrame saves an extracted frame as a PNG image
func (v *Viewer) SaveFrame(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveFrameSequence extracts and saves every frame into outputDir
func (v *Viewer) SaveFrameSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for f := 0; f < v.frames; f++ {
		img, err := v.ExtractFrame(f)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("frame_%03d.png", f))
		if err := v.SaveFrame(img, filename); err != nil {
			return fmt.Errorf("save frame %d: %w", f, err)
		}
	}

	return nil
}
