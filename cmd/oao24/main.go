package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"oao24/internal/logging"
	"oao24/internal/models"
	"oao24/pkg/config"
	"oao24/pkg/dataset"
	"oao24/pkg/mask"
	"oao24/pkg/optics"
	"oao24/pkg/reduction"
	"oao24/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "oao24.yaml", "YAML configuration file")
	rootDir := flag.String("root", "", "Data root directory (overrides config and $"+dataset.RootDirEnv+")")
	rawName := flag.String("raw", "", "Raw data cube (FITS), relative to the data root")
	bkgName := flag.String("background", "", "Background cube or frame (FITS), relative to the data root")
	outputDir := flag.String("out", "", "Output directory for the master image and rendered views")
	display := flag.Bool("display", false, "Render background, raw frame #0 and a clipped master view too")
	psf := flag.Bool("psf", false, "Render the PSF of the configured pupil")
	exportFrames := flag.Bool("export-frames", false, "Save every raw frame as a PNG image")
	verbose := flag.Bool("v", false, "Verbose logging")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Command line and environment override the file
	if env := os.Getenv(dataset.RootDirEnv); env != "" && cfg.Data.RootDir == "" {
		cfg.Data.RootDir = env
	}
	if *rootDir != "" {
		cfg.Data.RootDir = *rootDir
	}
	if *rawName != "" {
		cfg.Data.Raw = *rawName
	}
	if *bkgName != "" {
		cfg.Data.Background = *bkgName
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *display {
		cfg.Reduction.WantDisplay = true
	}
	if *psf {
		cfg.PSF.Enabled = true
	}
	if *verbose {
		cfg.Output.Verbose = true
	}

	logger, err := logging.New(cfg.Output.LogMode, cfg.Output.Verbose)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logging.Sync(logger)

	if cfg.Data.Raw == "" || cfg.Data.Background == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(cfg, *exportFrames, logger); err != nil {
		logger.Fatal("reduction failed", zap.Error(err))
	}
}

func run(cfg *config.Config, exportFrames bool, logger *zap.Logger) error {
	catalog, err := dataset.NewCatalog(cfg.DatasetConfig())
	if err != nil {
		return err
	}
	logger.Info("data root resolved", zap.String("root", catalog.Root()), zap.String("layout", string(catalog.Layout())))

	raw, err := catalog.LoadCube(cfg.Data.Raw)
	if err != nil {
		return fmt.Errorf("failed to load raw cube: %w", err)
	}
	background, err := catalog.LoadCube(cfg.Data.Background)
	if err != nil {
		return fmt.Errorf("failed to load background: %w", err)
	}

	rows, cols, frames := raw.Dims()
	logger.Info("raw cube loaded", zap.Int("rows", rows), zap.Int("cols", cols), zap.Int("frames", frames))

	renderer, err := visualization.NewPlotRenderer(cfg.Output.Dir, logger)
	if err != nil {
		return err
	}

	if exportFrames {
		framesDir := filepath.Join(cfg.Output.Dir, "raw_frames")
		if err := visualization.NewViewer(raw).SaveFrameSequence(framesDir); err != nil {
			logger.Warn("failed to export raw frames", zap.Error(err))
		}
	}

	builder := reduction.NewMasterImageBuilder(cfg.ReductionParams(), renderer, reduction.NewLogReporter(logger), logger)

	startTime := time.Now()
	master, err := builder.Build(raw, background)
	if err != nil {
		return err
	}
	logger.Info("master image built", zap.Duration("elapsed", time.Since(startTime)))

	masterPath := filepath.Join(cfg.Output.Dir, cfg.Output.MasterFile)
	f, err := os.Create(masterPath)
	if err != nil {
		return fmt.Errorf("failed to create master image file: %w", err)
	}
	if err := dataset.WriteImage(f, master); err != nil {
		f.Close()
		return fmt.Errorf("failed to write master image: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("master image written", zap.String("file", masterPath))

	pupil := buildPupil(cfg, models.Shape{Rows: rows, Cols: cols})
	selected, err := mask.Apply(master, pupil)
	if err != nil {
		return err
	}
	logger.Info("pupil flux",
		zap.Stringer("pupil", pupil),
		zap.Int("pixels", selected.Count()),
		zap.Float64("mean", selected.Mean()))

	if cfg.PSF.Enabled {
		psf, err := optics.PSF(pupil, cfg.PSF.Oversampling)
		if err != nil {
			return fmt.Errorf("failed to compute PSF: %w", err)
		}
		if err := renderer.Render(reduction.View{
			Image:    reduction.LogScale(psf),
			Title:    "Pupil PSF (log scale)",
			Colormap: reduction.ColormapInferno,
		}); err != nil {
			logger.Warn("failed to render PSF", zap.Error(err))
		}
	}

	return nil
}

// buildPupil creates the configured pupil over frames of the given shape
func buildPupil(cfg *config.Config, shape models.Shape) *mask.AnnularMask {
	opts := []mask.Option{}
	if cfg.Pupil.Radius != nil {
		opts = append(opts, mask.WithRadius(*cfg.Pupil.Radius))
	}
	if cfg.Pupil.CenterRow != nil || cfg.Pupil.CenterCol != nil {
		// An axis left unset stays on the frame center
		row, col := float64(shape.Rows)/2, float64(shape.Cols)/2
		if cfg.Pupil.CenterRow != nil {
			row = *cfg.Pupil.CenterRow
		}
		if cfg.Pupil.CenterCol != nil {
			col = *cfg.Pupil.CenterCol
		}
		opts = append(opts, mask.WithCenter(row, col))
	}
	return mask.NewAnnularMask(shape, cfg.Pupil.InnerRadius, opts...)
}
