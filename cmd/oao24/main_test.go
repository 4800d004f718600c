package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"oao24/internal/models"
	"oao24/pkg/config"
	"oao24/pkg/dataset"
	"oao24/pkg/mask"
)

func writeCube[T models.Number](t *testing.T, path string, c *models.Cube[T]) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := dataset.WriteCube(f, c, dataset.FramesLast); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// TestRun exercises the full reduction from FITS inputs to a FITS master image
func TestRun(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	raw := models.NewCube[uint16](32, 40, 3)
	for i := range raw.Data {
		raw.Data[i] = 100
	}
	bkg := models.NewCube[uint16](32, 40, 1)
	for i := range bkg.Data {
		bkg.Data[i] = 30
	}
	writeCube(t, filepath.Join(root, "raw.fits"), raw)
	writeCube(t, filepath.Join(root, "dark.fits"), bkg)

	cfg := config.DefaultConfig()
	cfg.Data.RootDir = root
	cfg.Data.Raw = "raw.fits"
	cfg.Data.Background = "dark.fits"
	cfg.Output.Dir = out
	cfg.PSF.Enabled = true

	if err := run(cfg, true, zap.NewNop()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	catalog, err := dataset.NewCatalog(dataset.Config{RootDir: out})
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	master, err := catalog.LoadCube("master.fits")
	if err != nil {
		t.Fatalf("Failed to load master image: %v", err)
	}
	if v := master.Value(10, 10, 0); v != 210 {
		t.Errorf("Expected master value 210, got %f", v)
	}

	for _, name := range []string{"00-master-image-log-scale.png", "01-pupil-psf-log-scale.png", "raw_frames/frame_002.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

// TestBuildPupil verifies configured geometry reaches the mask
func TestBuildPupil(t *testing.T) {
	cfg := config.DefaultConfig()
	radius, row, col := 10.0, 12.0, 14.0
	cfg.Pupil.Radius = &radius
	cfg.Pupil.CenterRow = &row
	cfg.Pupil.CenterCol = &col
	cfg.Pupil.InnerRadius = 3

	p := buildPupil(cfg, models.Shape{Rows: 30, Cols: 30})
	if p.Radius() != 10 || p.InnerRadius() != 3 {
		t.Errorf("Unexpected pupil %s", p)
	}
	if p.Center() != (mask.Center{Row: 12, Col: 14}) {
		t.Errorf("Unexpected center %+v", p.Center())
	}

	def := buildPupil(config.DefaultConfig(), models.Shape{Rows: 20, Cols: 30})
	if def.Radius() != 10 || def.InnerRadius() != 0 {
		t.Errorf("Unexpected default pupil %s", def)
	}
}

// TestBuildPupilSingleCenterAxis verifies one configured axis is kept and the
// other falls back to the frame center
func TestBuildPupilSingleCenterAxis(t *testing.T) {
	cfg := config.DefaultConfig()
	row := 4.0
	cfg.Pupil.CenterRow = &row

	p := buildPupil(cfg, models.Shape{Rows: 20, Cols: 30})
	if p.Center() != (mask.Center{Row: 4, Col: 15}) {
		t.Errorf("Unexpected center %+v", p.Center())
	}

	cfg = config.DefaultConfig()
	col := 7.0
	cfg.Pupil.CenterCol = &col

	p = buildPupil(cfg, models.Shape{Rows: 20, Cols: 30})
	if p.Center() != (mask.Center{Row: 10, Col: 7}) {
		t.Errorf("Unexpected center %+v", p.Center())
	}
}
