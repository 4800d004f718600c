package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/astrogo/fitsio"
	"gonum.org/v1/gonum/mat"

	"oao24/internal/models"
)

// ErrUnsupportedFormat is returned for FITS content that is not a 2-D or 3-D
// image with a standard BITPIX
var ErrUnsupportedFormat = errors.New("dataset: unsupported FITS format")

// ReadCube decodes the primary HDU of a FITS stream into a cube whose element
// type follows BITPIX: 8→uint8, 16→int16 (uint16 when BZERO=32768), 32→int32,
// 64→int64, -32→float32, -64→float64. Other BZERO/BSCALE pairs decode to
// physical float64 values. 2-D images load as single-frame cubes.
func ReadCube(r io.Reader, layout Layout) (models.Stack, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("fits open: %w", err)
	}
	defer f.Close()

	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("%w: primary HDU is not an image", ErrUnsupportedFormat)
	}

	hdr := img.Header()
	d, err := cubeDims(hdr.Axes(), layout)
	if err != nil {
		return nil, err
	}

	raw := img.Raw()
	n := d.rows * d.cols * d.frames
	bitpix := hdr.Bitpix()
	bzero := cardFloat(hdr, "BZERO", 0)
	bscale := cardFloat(hdr, "BSCALE", 1)

	switch {
	case bitpix == 16 && bzero == 32768 && bscale == 1:
		v, err := decode(raw, n, 2, func(b []byte) uint16 { return binary.BigEndian.Uint16(b) ^ 0x8000 })
		return assemble(v, d, err)

	case bzero != 0 || bscale != 1:
		width, sample, err := sampleReader(bitpix)
		if err != nil {
			return nil, err
		}
		v, err := decode(raw, n, width, func(b []byte) float64 { return bzero + bscale*sample(b) })
		return assemble(v, d, err)
	}

	switch bitpix {
	case 8:
		v, err := decode(raw, n, 1, func(b []byte) uint8 { return b[0] })
		return assemble(v, d, err)
	case 16:
		v, err := decode(raw, n, 2, func(b []byte) int16 { return int16(binary.BigEndian.Uint16(b)) })
		return assemble(v, d, err)
	case 32:
		v, err := decode(raw, n, 4, func(b []byte) int32 { return int32(binary.BigEndian.Uint32(b)) })
		return assemble(v, d, err)
	case 64:
		v, err := decode(raw, n, 8, func(b []byte) int64 { return int64(binary.BigEndian.Uint64(b)) })
		return assemble(v, d, err)
	case -32:
		v, err := decode(raw, n, 4, func(b []byte) float32 { return math.Float32frombits(binary.BigEndian.Uint32(b)) })
		return assemble(v, d, err)
	case -64:
		v, err := decode(raw, n, 8, func(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) })
		return assemble(v, d, err)
	}
	return nil, fmt.Errorf("%w: BITPIX %d", ErrUnsupportedFormat, bitpix)
}

type dims struct {
	rows, cols, frames int
	// framesFirst is set for 3-D data stored one frame after the other
	framesFirst bool
}

// cubeDims maps FITS axes (NAXIS1 first) onto rows, columns and frames
func cubeDims(axes []int, layout Layout) (dims, error) {
	switch len(axes) {
	case 2:
		return dims{rows: axes[1], cols: axes[0], frames: 1}, nil
	case 3:
		if layout == FramesFirst {
			return dims{rows: axes[1], cols: axes[0], frames: axes[2], framesFirst: true}, nil
		}
		return dims{rows: axes[2], cols: axes[1], frames: axes[0]}, nil
	}
	return dims{}, fmt.Errorf("%w: %d axes", ErrUnsupportedFormat, len(axes))
}

func cardFloat(hdr *fitsio.Header, name string, def float64) float64 {
	card := hdr.Get(name)
	if card == nil {
		return def
	}
	switch v := card.Value.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	case float32:
		return float64(v)
	}
	return def
}

func sampleReader(bitpix int) (int, func([]byte) float64, error) {
	switch bitpix {
	case 8:
		return 1, func(b []byte) float64 { return float64(b[0]) }, nil
	case 16:
		return 2, func(b []byte) float64 { return float64(int16(binary.BigEndian.Uint16(b))) }, nil
	case 32:
		return 4, func(b []byte) float64 { return float64(int32(binary.BigEndian.Uint32(b))) }, nil
	case 64:
		return 8, func(b []byte) float64 { return float64(int64(binary.BigEndian.Uint64(b))) }, nil
	case -32:
		return 4, func(b []byte) float64 { return float64(math.Float32frombits(binary.BigEndian.Uint32(b))) }, nil
	case -64:
		return 8, func(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) }, nil
	}
	return 0, nil, fmt.Errorf("%w: BITPIX %d", ErrUnsupportedFormat, bitpix)
}

func decode[T models.Number](raw []byte, n, width int, at func([]byte) T) ([]T, error) {
	if len(raw) < n*width {
		return nil, fmt.Errorf("%w: %d data bytes, need %d", ErrUnsupportedFormat, len(raw), n*width)
	}
	out := make([]T, n)
	for i := range out {
		out[i] = at(raw[i*width:])
	}
	return out, nil
}

func assemble[T models.Number](values []T, d dims, err error) (models.Stack, error) {
	if err != nil {
		return nil, err
	}
	if !d.framesFirst {
		return &models.Cube[T]{Rows: d.rows, Cols: d.cols, Frames: d.frames, Data: values}, nil
	}

	c := models.NewCube[T](d.rows, d.cols, d.frames)
	i := 0
	for f := 0; f < d.frames; f++ {
		for r := 0; r < d.rows; r++ {
			for col := 0; col < d.cols; col++ {
				c.Set(r, col, f, values[i])
				i++
			}
		}
	}
	return c, nil
}

// fitsOrder returns the samples of c in FITS storage order for layout
func fitsOrder[T models.Number](c *models.Cube[T], layout Layout) ([]T, []int) {
	if layout != FramesFirst {
		return c.Data, []int{c.Frames, c.Cols, c.Rows}
	}
	out := make([]T, 0, len(c.Data))
	for f := 0; f < c.Frames; f++ {
		for r := 0; r < c.Rows; r++ {
			for col := 0; col < c.Cols; col++ {
				out = append(out, c.At(r, col, f))
			}
		}
	}
	return out, []int{c.Cols, c.Rows, c.Frames}
}

// WriteCube encodes c as the primary image of a FITS stream. uint16 samples
// are stored as int16 with BZERO=32768.
func WriteCube[T models.Number](w io.Writer, c *models.Cube[T], layout Layout) error {
	values, axes := fitsOrder(c, layout)

	var (
		bitpix int
		data   any
		cards  []fitsio.Card
	)
	switch v := any(values).(type) {
	case []uint8:
		bitpix, data = 8, v
	case []int16:
		bitpix, data = 16, v
	case []uint16:
		shifted := make([]int16, len(v))
		for i, s := range v {
			shifted[i] = int16(s ^ 0x8000)
		}
		bitpix, data = 16, shifted
		cards = append(cards,
			fitsio.Card{Name: "BZERO", Value: 32768.0},
			fitsio.Card{Name: "BSCALE", Value: 1.0})
	case []int32:
		bitpix, data = 32, v
	case []int64:
		bitpix, data = 64, v
	case []float32:
		bitpix, data = -32, v
	case []float64:
		bitpix, data = -64, v
	default:
		return fmt.Errorf("%w: element type %T", ErrUnsupportedFormat, values)
	}
	return writeImage(w, bitpix, axes, data, cards)
}

// WriteImage encodes a 2-D float64 image, such as a master image, to FITS
func WriteImage(w io.Writer, m mat.Matrix) error {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data = append(data, m.At(r, c))
		}
	}
	cards := []fitsio.Card{{Name: "BUNIT", Value: "ADU", Comment: "summed background-subtracted counts"}}
	return writeImage(w, -64, []int{cols, rows}, data, cards)
}

func writeImage(w io.Writer, bitpix int, axes []int, data any, cards []fitsio.Card) error {
	f, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("fits create: %w", err)
	}

	img := fitsio.NewImage(bitpix, axes)
	defer img.Close()

	if len(cards) > 0 {
		if err := img.Header().Append(cards...); err != nil {
			f.Close()
			return fmt.Errorf("fits header: %w", err)
		}
	}
	if err := img.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("fits write data: %w", err)
	}
	if err := f.Write(img); err != nil {
		f.Close()
		return fmt.Errorf("fits write hdu: %w", err)
	}
	return f.Close()
}
