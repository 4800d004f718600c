// Package visualization renders reduction products to image files.
package visualization

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"oao24/pkg/reduction"
)

const (
	plotWidth     = 8 * vg.Inch
	plotHeight    = 6 * vg.Inch
	colorbarWidth = 1.2 * vg.Inch
	paletteSize   = 256
)

// PlotRenderer writes every view it receives as a PNG heat map with a colour
// bar. Files are numbered in emission order: 00-master-image-log-scale.png.
type PlotRenderer struct {
	mu        sync.Mutex
	outputDir string
	count     int
	logger    *zap.Logger
}

// NewPlotRenderer creates a renderer writing into outputDir
func NewPlotRenderer(outputDir string, logger *zap.Logger) (*PlotRenderer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlotRenderer{outputDir: outputDir, logger: logger}, nil
}

// Render implements reduction.Renderer
func (pr *PlotRenderer) Render(v reduction.View) error {
	pr.mu.Lock()
	filename := filepath.Join(pr.outputDir, fmt.Sprintf("%02d-%s.png", pr.count, slug(v.Title)))
	pr.count++
	pr.mu.Unlock()

	if err := renderPNG(v, filename); err != nil {
		return err
	}
	pr.logger.Info("view rendered", zap.String("title", v.Title), zap.String("file", filename))
	return nil
}

// slug turns a title into a file name fragment
func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "view"
	}
	return s
}

func colorMap(name string) palette.ColorMap {
	switch name {
	case reduction.ColormapInferno:
		return moreland.ExtendedBlackBody()
	default:
		return moreland.ExtendedKindlmann()
	}
}

// viewRange returns the view bounds, or the finite data range when unbounded
func viewRange(v reduction.View) (float64, float64) {
	if v.Bounds != nil {
		lo, hi := v.Bounds.Min, v.Bounds.Max
		if hi <= lo {
			hi = lo + 1
		}
		return lo, hi
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	rows, cols := v.Image.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			val := v.Image.At(r, c)
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue
			}
			lo = math.Min(lo, val)
			hi = math.Max(hi, val)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// imageGrid adapts a matrix to plotter.GridXYZ with row 0 drawn at the top
// and values clipped to [lo, hi].
type imageGrid struct {
	m      mat.Matrix
	lo, hi float64
}

func (g imageGrid) Dims() (c, r int) {
	rows, cols := g.m.Dims()
	return cols, rows
}

func (g imageGrid) Z(c, r int) float64 {
	rows, _ := g.m.Dims()
	v := g.m.At(rows-1-r, c)
	if math.IsNaN(v) {
		return v
	}
	return math.Max(g.lo, math.Min(g.hi, v))
}

func (g imageGrid) X(c int) float64 { return float64(c) }
func (g imageGrid) Y(r int) float64 { return float64(r) }

func renderPNG(v reduction.View, filename string) error {
	rows, cols := v.Image.Dims()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("cannot render empty image %q", v.Title)
	}

	lo, hi := viewRange(v)
	cm := colorMap(v.Colormap)
	cm.SetMin(lo)
	cm.SetMax(hi)

	p := plot.New()
	p.Title.Text = v.Title
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"

	hm := plotter.NewHeatMap(imageGrid{m: v.Image, lo: lo, hi: hi}, cm.Palette(paletteSize))
	hm.Min = lo
	hm.Max = hi
	p.Add(hm)

	bar := plot.New()
	bar.HideX()
	bar.Y.Label.Text = v.ColorbarLabel
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})

	img := vgimg.New(plotWidth, plotHeight)
	dc := draw.New(img)
	p.Draw(draw.Crop(dc, 0, -colorbarWidth, 0, 0))
	bar.Draw(draw.Crop(dc, plotWidth-colorbarWidth, 0, 0, 0))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
