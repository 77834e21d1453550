package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fractalrender/internal/plotctx"
)

func TestParseDefaults(t *testing.T) {
	a, err := Parse([]string{})
	require.NoError(t, err)
	assert.Equal(t, "mandelbrot", a.Family)
	assert.Equal(t, 640, a.Width)
	assert.Equal(t, 480, a.Height)
	assert.False(t, a.IsMaster())
	assert.False(t, a.IsWorker())
}

func TestParseFlagsOverrideDefaults(t *testing.T) {
	a, err := Parse([]string{"--width", "100", "--height", "50", "--scheme", "ascii"})
	require.NoError(t, err)
	assert.Equal(t, 100, a.Width)
	assert.Equal(t, 50, a.Height)
	assert.Equal(t, "ascii", a.Scheme)
}

func TestParseDistributedRoles(t *testing.T) {
	master, err := Parse([]string{"--master", "10.0.0.2:9000", "--master", "10.0.0.3:9000"})
	require.NoError(t, err)
	assert.True(t, master.IsMaster())
	assert.Equal(t, []string{"10.0.0.2:9000", "10.0.0.3:9000"}, master.Master)

	worker, err := Parse([]string{"--worker", "0.0.0.0:9000"})
	require.NoError(t, err)
	assert.True(t, worker.IsWorker())
}

func TestPlotContextRejectsUnknownNames(t *testing.T) {
	a, err := Parse([]string{"--family", "sierpinski"})
	require.NoError(t, err)
	_, err = a.PlotContext()
	assert.Error(t, err)
}

func TestPlotContextBuildsAFinalizedContext(t *testing.T) {
	a, err := Parse([]string{"--width", "32", "--height", "32"})
	require.NoError(t, err)

	pctx, err := a.PlotContext()
	require.NoError(t, err)
	assert.Equal(t, plotctx.Mandelbrot, pctx.Family)
	assert.Equal(t, plotctx.Depth24, pctx.Depth)
	assert.Greater(t, pctx.SmoothFactor, 0.0)
}

func TestConfigFileOverlaysDefaultsButNotExplicitFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 1024\nheight: 768\nscheme: fire\n"), 0o644))

	a, err := Parse([]string{"--config", path, "--height", "99"})
	require.NoError(t, err)

	assert.Equal(t, 1024, a.Width)
	assert.Equal(t, 99, a.Height)
	assert.Equal(t, "fire", a.Scheme)
}
