// Package dataset locates the example data sets and decodes the FITS files
// holding raw and background data cubes.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"oao24/internal/models"
)

// RootDirEnv is the environment variable the command line reads at startup to
// override the data root. The package itself never reads the environment.
const RootDirEnv = "OAO24_ROOT_DIR"

// Layout tells how the axes of a 3-D FITS image map to rows, columns and frames
type Layout string

const (
	// FramesLast stores cubes as rows × columns × frames, frame axis varying
	// fastest (NAXIS1 = frames). This is the layout of the tutorial data.
	FramesLast Layout = "frames-last"

	// FramesFirst stores one frame after the other (NAXIS3 = frames)
	FramesFirst Layout = "frames-first"
)

// Config selects where example data lives and how cubes are laid out
type Config struct {
	// RootDir overrides the packaged data directory when not empty
	RootDir string `yaml:"rootDir"`

	// Layout of 3-D images; empty means FramesLast
	Layout Layout `yaml:"layout"`
}

// Catalog resolves data set paths below a root directory.
type Catalog struct {
	root   string
	layout Layout
}

// DefaultRootDir is the data directory shipped next to the executable
func DefaultRootDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "data"), nil
}

// NewCatalog resolves the data root once; the result never changes afterwards.
func NewCatalog(cfg Config) (*Catalog, error) {
	layout := cfg.Layout
	switch layout {
	case "":
		layout = FramesLast
	case FramesLast, FramesFirst:
	default:
		return nil, fmt.Errorf("unknown cube layout %q", layout)
	}

	root := cfg.RootDir
	if root == "" {
		var err error
		if root, err = DefaultRootDir(); err != nil {
			return nil, err
		}
	}
	return &Catalog{root: root, layout: layout}, nil
}

// Root is the resolved data root directory
func (c *Catalog) Root() string { return c.root }

// Layout is the cube layout used by LoadCube
func (c *Catalog) Layout() Layout { return c.layout }

// Path joins elem below the data root
func (c *Catalog) Path(elem ...string) string {
	return filepath.Join(append([]string{c.root}, elem...)...)
}

// Tuto2Folder holds the data of the second tutorial
func (c *Catalog) Tuto2Folder() string { return c.Path("tuto2") }

// Tuto3Folder holds the data of the third tutorial
func (c *Catalog) Tuto3Folder() string { return c.Path("tuto3") }

// LoadCube reads the FITS file at elem below the data root, or at elem[0]
// when it is an absolute path.
func (c *Catalog) LoadCube(elem ...string) (models.Stack, error) {
	path := c.Path(elem...)
	if len(elem) == 1 && filepath.IsAbs(elem[0]) {
		path = elem[0]
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cube: %w", err)
	}
	defer f.Close()

	cube, err := ReadCube(f, c.layout)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return cube, nil
}
