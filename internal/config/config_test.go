package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup. (t.Chdir requires Go 1.24+.)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 1000, cfg.Store.PageSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://api.elevenlabs.io", cfg.ElevenLabs.BaseURL)
	assert.Equal(t, "IHMMqNaUtMooU2Q3wLVK", cfg.ElevenLabs.VoiceID)
	assert.Zero(t, cfg.ElevenLabs.Stability)
	assert.Zero(t, cfg.ElevenLabs.SimilarityBoost)
	assert.Equal(t, "https://s3.us.archive.org", cfg.Archive.S3URL)
	assert.Equal(t, "1885564100", cfg.Archive.PieceCollection)
	assert.Equal(t, "39215337", cfg.Archive.ArtistCollection)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NARRATOR_STORE_DRIVER", "sqlite")
	t.Setenv("NARRATOR_STORE_PAGE_SIZE", "50")
	t.Setenv("NARRATOR_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 50, cfg.Store.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
store:
  driver: sqlite
  database_url: narrator.db
  page_size: 25
elevenlabs:
  key: test-key
archive:
  piece_collection: "555"
log:
  level: warn
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "narrator.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 25, cfg.Store.PageSize)
	assert.Equal(t, "test-key", cfg.ElevenLabs.Key)
	assert.Equal(t, "555", cfg.Archive.PieceCollection)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Keys the file leaves out keep their defaults.
	assert.Equal(t, "IHMMqNaUtMooU2Q3wLVK", cfg.ElevenLabs.VoiceID)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [not a map"), 0o644))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
