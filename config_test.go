package fswatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/projects", cfg.ProjectsRoot)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"/projects"}, cfg.Watcher.WatchPaths)
	assert.Equal(t, 10*time.Millisecond, cfg.Watcher.Debounce)
	assert.Equal(t, 32, cfg.Watcher.WorkerCount)
	assert.Contains(t, cfg.Watcher.IgnorePatterns, "**/.git/**")
	assert.Equal(t, DefaultConfigTracker(), cfg.Tracker)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fswatch.yaml")
	content := `
projects_root: /workspace
watcher:
  watch_paths: [/workspace/app]
  ignore_patterns: ["**/target/**"]
  debounce: 50ms
  worker_count: 4
tracker:
  metadata_dir: .meta
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("FSWATCH_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/workspace", cfg.ProjectsRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"/workspace/app"}, cfg.Watcher.WatchPaths)
	assert.Equal(t, []string{"**/target/**"}, cfg.Watcher.IgnorePatterns)
	assert.Equal(t, 50*time.Millisecond, cfg.Watcher.Debounce)
	assert.Equal(t, 4, cfg.Watcher.WorkerCount)
	assert.Equal(t, ".meta", cfg.Tracker.MetadataDir)
	assert.Equal(t, DefaultExcludesFileName, cfg.Tracker.FileName)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"negative workers", Config{Watcher: ConfigWatcher{WorkerCount: -1}, Tracker: DefaultConfigTracker()}},
		{"empty metadata dir", Config{Tracker: ConfigTracker{FileName: "x"}}},
		{"empty file name", Config{Tracker: ConfigTracker{MetadataDir: ".che"}}},
		{"nested file name", Config{Tracker: ConfigTracker{MetadataDir: ".che", FileName: "a/b"}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.ErrorIs(t, c.cfg.Validate(), ErrInvalidConfig)
		})
	}
	assert.NoError(t, Config{Tracker: DefaultConfigTracker()}.Validate())
}
