package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database location configuration.
type Paths struct {
	// DataDir is the root for downloaded lesson audio, extracted clips,
	// and segment manifests. Each lesson lives in its own subdirectory.
	DataDir string `toml:"data_dir"`
	// CardDB is the SQLite flashcard database operated on by krdb.
	CardDB string `toml:"card_db"`
	LogDir string `toml:"log_dir"`
}

// Scraper contains configuration for fetching lesson pages and audio.
type Scraper struct {
	// SiteBase is the root URL of the lesson site.
	SiteBase  string `toml:"site_base"`
	UserAgent string `toml:"user_agent"`
	// RequestDelayMS is the pause between consecutive downloads so the
	// lesson site is never hammered.
	RequestDelayMS         int `toml:"request_delay_ms"`
	PageTimeoutSeconds     int `toml:"page_timeout_seconds"`
	DownloadTimeoutSeconds int `toml:"download_timeout_seconds"`
}

// Segmentation contains tuning values for silence detection and clip
// extraction. The per-recording overrides in a manifest take precedence
// over these batch-wide values.
type Segmentation struct {
	MinSilenceMS         int     `toml:"min_silence_ms"`
	SilenceThresholdDBFS float64 `toml:"silence_threshold_dbfs"`
	PaddingMS            int     `toml:"padding_ms"`
	ManualPaddingMS      int     `toml:"manual_padding_ms"`
	ResolutionMS         int     `toml:"resolution_ms"`
	// Workers bounds how many recordings are segmented concurrently.
	Workers      int    `toml:"workers"`
	FFmpegBinary string `toml:"ffmpeg_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for kr-notebook.
//
// Configuration sections by subsystem:
//   - Paths: lesson data root, card database, and log directory
//   - Scraper: request identity, pacing, and timeouts
//   - Segmentation: silence detection defaults and worker bounds
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Scraper      Scraper      `toml:"scraper"`
	Segmentation Segmentation `toml:"segmentation"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/kr-notebook/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/kr-notebook/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("kr-notebook.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories commands rely on. The card
// database parent is created on a best-effort basis since krdb init
// creates it when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.CardDB) != "" {
		_ = os.MkdirAll(filepath.Dir(c.Paths.CardDB), 0o755)
	}
	return nil
}

// ScrapeRoot returns the directory all scraped lessons live under.
// Scraped material sits below scraped/htsk so other data families can
// share the data directory.
func (c *Config) ScrapeRoot() string {
	return filepath.Join(c.Paths.DataDir, "scraped", "htsk")
}

// LessonDir returns the directory holding a lesson's recordings, clips,
// and manifest.
func (c *Config) LessonDir(lesson string) string {
	return filepath.Join(c.ScrapeRoot(), lesson)
}

// FFmpegBinary returns the ffmpeg executable used for MP3 decode and encode.
func (c *Config) FFmpegBinary() string {
	return c.Segmentation.FFmpegBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
