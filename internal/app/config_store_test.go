package app

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vscraper/vscraper-go/internal/domain"
	"go.uber.org/zap"
)

// testConfig returns a valid configuration rooted in a temp directory
func testConfig(t *testing.T) domain.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := *domain.DefaultConfig()
	cfg.Download.BaseDir = filepath.Join(dir, "downloads")
	cfg.Download.LogsDir = filepath.Join(dir, "logs")
	cfg.Download.DatabasePath = filepath.Join(dir, "jobs.db")
	cfg.Tools.BinDir = filepath.Join(dir, "libs")
	cfg.Tools.YtdlpPath = filepath.Join(dir, "libs", "yt-dlp")
	cfg.Tools.FfmpegPath = filepath.Join(dir, "libs", "ffmpeg")
	return cfg
}

func newTestStore(cfg domain.Config, path string) *ConfigStore {
	return &ConfigStore{
		config: &cfg,
		path:   path,
		logger: zap.NewNop(),
	}
}

func TestConfigStore_DefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist", "config.yaml")
	store := NewConfigStore(path, zap.NewNop())

	cfg := store.Get()
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.False(t, cfg.Preferences.SkipHomepage)
}

func TestConfigStore_UpdatePersistsAndReloads(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := newTestStore(cfg, path)

	cfg.Preferences.SkipHomepage = true
	cfg.Download.RateLimit = "2M"
	cfg.Server.Port = 9000
	require.NoError(t, store.Update(cfg))

	// A fresh store sees the persisted record.
	reloaded := NewConfigStore(path, zap.NewNop()).Get()
	assert.True(t, reloaded.Preferences.SkipHomepage)
	assert.Equal(t, "2M", reloaded.Download.RateLimit)
	assert.Equal(t, 9000, reloaded.Server.Port)
}

func TestConfigStore_UpdateKeepsMemoryOnPersistFailure(t *testing.T) {
	cfg := testConfig(t)
	// A directory path makes the rename fail.
	store := newTestStore(cfg, t.TempDir())

	cfg.Preferences.SkipHomepage = true
	err := store.Update(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPersistence))

	// The running core keeps the caller's preference regardless.
	assert.True(t, store.Get().Preferences.SkipHomepage)
}

func TestConfigStore_SetSkipHomepage(t *testing.T) {
	store := newTestStore(testConfig(t), "")

	require.NoError(t, store.SetSkipHomepage(true))
	assert.True(t, store.Get().Preferences.SkipHomepage)

	require.NoError(t, store.SetSkipHomepage(false))
	assert.False(t, store.Get().Preferences.SkipHomepage)
}

func TestConfigStore_GetReturnsSnapshot(t *testing.T) {
	store := newTestStore(testConfig(t), "")

	snapshot := store.Get()
	snapshot.Server.Port = 1

	assert.NotEqual(t, 1, store.Get().Server.Port)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Server.Port = 0
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveConfig(&cfg, path))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_LeavesNoTempFile(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveConfig(&cfg, path))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
