package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Sloth Renderer", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.True(t, cfg.Window.VSync)

	assert.Equal(t, [3]float32{0, 1, 2}, cfg.Camera.Eye)
	assert.Equal(t, float32(45), cfg.Camera.FovYDegrees)
	assert.Equal(t, float32(2), cfg.Camera.MinRadius)
	assert.Equal(t, float32(10), cfg.Camera.MaxRadius)
	assert.Equal(t, float32(0.9), cfg.Camera.InertiaDecay)
	assert.Equal(t, float32(0.2), cfg.Camera.Sensitivity)

	assert.Equal(t, [4]float64{0, 0, 0, 1}, cfg.Render.ClearColor)
	assert.Equal(t, 1, cfg.Render.MSAA)
	assert.False(t, cfg.Render.DoubleSided)

	assert.Equal(t, "~/.sloth", cfg.Assets.BaseDir)
	assert.Equal(t, 4, cfg.Assets.DecodeWorkers)
	assert.Equal(t, 30*time.Second, cfg.Assets.HTTPTimeout.Std())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Profiler.Enabled)
	assert.Empty(t, cfg.Source)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sloth.yaml")
	content := `
window:
  width: 1920
  vsync: false
camera:
  eye: [1, 2, 3]
  sensitivity: 0.5
assets:
  http_timeout: 5s
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep defaults")
	assert.False(t, cfg.Window.VSync)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Camera.Eye)
	assert.Equal(t, float32(0.5), cfg.Camera.Sensitivity)
	assert.Equal(t, 5*time.Second, cfg.Assets.HTTPTimeout.Std())
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sloth.toml")
	content := `
[render]
clear_color = [0.1, 0.2, 0.3, 1.0]
msaa = 4
frame_limit = 60
double_sided = true

[assets]
base_dir = "/srv/models"
http_timeout = "1m"

[profiler]
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 1.0}, cfg.Render.ClearColor)
	assert.Equal(t, 4, cfg.Render.MSAA)
	assert.Equal(t, 60, cfg.Render.FrameLimit)
	assert.True(t, cfg.Render.DoubleSided)
	assert.Equal(t, "/srv/models", cfg.Assets.BaseDir)
	assert.Equal(t, time.Minute, cfg.Assets.HTTPTimeout.Std())
	assert.True(t, cfg.Profiler.Enabled)
	assert.Equal(t, "Sloth Renderer", cfg.Window.Title)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, LoadFile(Default(), filepath.Join(dir, "missing.yaml")))

	ini := filepath.Join(dir, "sloth.ini")
	require.NoError(t, os.WriteFile(ini, []byte("a=b"), 0644))
	assert.ErrorContains(t, LoadFile(Default(), ini), "unknown config format")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[assets]\nhttp_timeout = \"soon\""), 0644))
	assert.Error(t, LoadFile(Default(), bad))
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sloth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  width: 1920\n  height: 1080\n"), 0644))

	fs := flag.NewFlagSet("sloth", flag.ContinueOnError)
	fv := registerFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--config", path,
		"--debug",
		"--width", "800",
		"--source", "DamagedHelmet",
		"--profile",
		"--log-file", "~/sloth.log",
		"--save-config",
	}))

	cfg, err := load(fv)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 1080, cfg.Window.Height)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "DamagedHelmet", cfg.Source)
	assert.True(t, cfg.Profiler.Enabled)
	assert.Equal(t, "~/sloth.log", cfg.Logging.LogFile)
	assert.True(t, fv.save)
}

func TestLoadReportsBadExplicitFile(t *testing.T) {
	fs := flag.NewFlagSet("sloth", flag.ContinueOnError)
	fv := registerFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))

	_, err := load(fv)
	assert.ErrorContains(t, err, "loading config from")
}

func TestSaveToRoundTripsBothFormats(t *testing.T) {
	for _, name := range []string{"out/config.yaml", "out/config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := Default()
			cfg.Window.Title = "saved"
			cfg.Assets.HTTPTimeout = Duration(90 * time.Second)
			cfg.Source = "not persisted"
			require.NoError(t, cfg.SaveTo(path))

			got := Default()
			require.NoError(t, LoadFile(got, path))
			assert.Equal(t, "saved", got.Window.Title)
			assert.Equal(t, 90*time.Second, got.Assets.HTTPTimeout.Std())
			assert.Empty(t, got.Source)
		})
	}
}

func TestSaveDefaultsToUserConfigDir(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("config dir is only relocatable through XDG_CONFIG_HOME")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := Default()
	cfg.Render.DoubleSided = true
	path, err := cfg.Save("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sloth", "config.yaml"), path)

	got := Default()
	require.NoError(t, LoadFile(got, path))
	assert.True(t, got.Render.DoubleSided)

	explicit := filepath.Join(dir, "explicit.toml")
	path, err = cfg.Save(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
	assert.FileExists(t, explicit)
}
