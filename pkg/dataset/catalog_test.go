package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oao24/internal/models"
)

func TestNewCatalogExplicitRoot(t *testing.T) {
	root := t.TempDir()
	c, err := NewCatalog(Config{RootDir: root})
	require.NoError(t, err)

	assert.Equal(t, root, c.Root())
	assert.Equal(t, FramesLast, c.Layout())
	assert.Equal(t, filepath.Join(root, "tuto2"), c.Tuto2Folder())
	assert.Equal(t, filepath.Join(root, "tuto3"), c.Tuto3Folder())
	assert.Equal(t, filepath.Join(root, "tuto3", "raw.fits"), c.Path("tuto3", "raw.fits"))
}

func TestNewCatalogDefaultRoot(t *testing.T) {
	c, err := NewCatalog(Config{})
	require.NoError(t, err)

	want, err := DefaultRootDir()
	require.NoError(t, err)
	assert.Equal(t, want, c.Root())
	assert.Equal(t, "data", filepath.Base(c.Root()))
}

func TestNewCatalogRejectsUnknownLayout(t *testing.T) {
	_, err := NewCatalog(Config{RootDir: t.TempDir(), Layout: "sideways"})
	assert.Error(t, err)
}

func TestLoadCube(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tuto2"), 0755))

	in := sampleCube(4, 4, 2, func(r, c, f int) int16 { return int16(r*4 + c - f) })
	f, err := os.Create(filepath.Join(root, "tuto2", "raw.fits"))
	require.NoError(t, err)
	require.NoError(t, WriteCube(f, in, FramesLast))
	require.NoError(t, f.Close())

	c, err := NewCatalog(Config{RootDir: root})
	require.NoError(t, err)

	out, err := c.LoadCube("tuto2", "raw.fits")
	require.NoError(t, err)
	cube, ok := out.(*models.Cube[int16])
	require.True(t, ok)
	assert.Equal(t, in.Data, cube.Data)

	abs, err := c.LoadCube(filepath.Join(root, "tuto2", "raw.fits"))
	require.NoError(t, err)
	assert.Equal(t, out, abs)

	_, err = c.LoadCube("tuto2", "missing.fits")
	assert.Error(t, err)
}
