package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/prapti/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, config.DefaultCursorGlyph, cfg.CursorGlyph)
	assert.Equal(t, 100, cfg.RetryBackoffMillis)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 100*time.Millisecond, cfg.RetryBackoff())
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_OverridesIndividualFields(t *testing.T) {
	path := writeFixture(t, `{
		// cursor glyph override
		"cursorGlyph": "▌",
		"retryBackoffMillis": 250,
		"logLevel": "debug"
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, '▌', cfg.CursorGlyph)
	assert.Equal(t, 250, cfg.RetryBackoffMillis)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBackoff())
}

func TestLoad_OmittedFieldsKeepDefaults(t *testing.T) {
	path := writeFixture(t, `{"logLevel": "warn"}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultCursorGlyph, cfg.CursorGlyph)
	assert.Equal(t, 100, cfg.RetryBackoffMillis)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoad_MultiCharacterGlyphRejected(t *testing.T) {
	path := writeFixture(t, `{"cursorGlyph": "ab"}`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_NonPositiveBackoffRejected(t *testing.T) {
	path := writeFixture(t, `{"retryBackoffMillis": 0}`)
	_, err := config.Load(path)
	assert.Error(t, err)

	path = writeFixture(t, `{"retryBackoffMillis": -5}`)
	_, err = config.Load(path)
	assert.Error(t, err)
}

func TestLoad_UnknownLogLevelRejected(t *testing.T) {
	path := writeFixture(t, `{"logLevel": "verbose"}`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.jsonc"))
	assert.Error(t, err)
}

func TestLoad_InvalidJSONErrors(t *testing.T) {
	path := writeFixture(t, `{ not valid json `)
	_, err := config.Load(path)
	assert.Error(t, err)
}
