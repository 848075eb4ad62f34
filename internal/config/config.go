// Package config loads the optional JSON-with-comments settings file
// SPEC_FULL.md §4.9 describes: cursor glyph override, retry back-off, and
// log level.
//
// Grounded on the teacher's adapter/json/parse.go use of
// github.com/tidwall/jsonc to strip comments before handing the result to
// encoding/json — the same two-step parse, rehomed from schema documents
// onto server settings.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tidwall/jsonc"
)

// DefaultCursorGlyph is the U+2588 FULL BLOCK spec.md §6 names.
const DefaultCursorGlyph = '█'

// DefaultRetryBackoff is the 100ms back-off spec.md §4.3 names for both
// insertion retries and cleanup retries.
const DefaultRetryBackoff = 100 * time.Millisecond

// Config holds the server's tunable settings, all optional.
type Config struct {
	CursorGlyph        rune
	RetryBackoffMillis int
	LogLevel           slog.Level
}

// raw mirrors the on-disk JSONC shape before defaulting and validation.
type raw struct {
	CursorGlyph        string `json:"cursorGlyph"`
	RetryBackoffMillis *int   `json:"retryBackoffMillis"`
	LogLevel           string `json:"logLevel"`
}

// Default returns the built-in configuration used when no settings file
// is supplied.
func Default() Config {
	return Config{
		CursorGlyph:        DefaultCursorGlyph,
		RetryBackoffMillis: int(DefaultRetryBackoff / time.Millisecond),
		LogLevel:           slog.LevelInfo,
	}
}

// Load reads and parses the JSONC settings file at path, falling back to
// Default() for any field the file omits.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var r raw
	if err := json.Unmarshal(jsonc.ToJSON(data), &r); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if r.CursorGlyph != "" {
		runes := []rune(r.CursorGlyph)
		if len(runes) != 1 {
			return Config{}, fmt.Errorf("config: cursorGlyph must be exactly one character, got %q", r.CursorGlyph)
		}
		cfg.CursorGlyph = runes[0]
	}
	if r.RetryBackoffMillis != nil {
		if *r.RetryBackoffMillis <= 0 {
			return Config{}, fmt.Errorf("config: retryBackoffMillis must be positive, got %d", *r.RetryBackoffMillis)
		}
		cfg.RetryBackoffMillis = *r.RetryBackoffMillis
	}
	if r.LogLevel != "" {
		lvl, err := parseLevel(r.LogLevel)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

// RetryBackoff returns the configured retry delay as a time.Duration.
func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMillis) * time.Millisecond
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown logLevel %q", s)
	}
}
