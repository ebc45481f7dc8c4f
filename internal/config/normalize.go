package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScraper()
	c.normalizeSegmentation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CardDB) == "" {
		c.Paths.CardDB = defaultCardDB
	}
	if c.Paths.CardDB, err = expandPath(c.Paths.CardDB); err != nil {
		return fmt.Errorf("paths.card_db: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScraper() {
	c.Scraper.SiteBase = strings.TrimRight(strings.TrimSpace(c.Scraper.SiteBase), "/")
	if c.Scraper.SiteBase == "" {
		c.Scraper.SiteBase = defaultSiteBase
	}
	c.Scraper.UserAgent = strings.TrimSpace(c.Scraper.UserAgent)
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = defaultUserAgent
	}
	if c.Scraper.RequestDelayMS < 0 {
		c.Scraper.RequestDelayMS = 0
	}
	if c.Scraper.PageTimeoutSeconds <= 0 {
		c.Scraper.PageTimeoutSeconds = defaultPageTimeoutSeconds
	}
	if c.Scraper.DownloadTimeoutSeconds <= 0 {
		c.Scraper.DownloadTimeoutSeconds = defaultDownloadTimeoutSeconds
	}
}

func (c *Config) normalizeSegmentation() {
	if c.Segmentation.SilenceThresholdDBFS == 0 {
		c.Segmentation.SilenceThresholdDBFS = defaultSilenceThresholdDBFS
	}
	if c.Segmentation.Workers <= 0 {
		c.Segmentation.Workers = defaultWorkers
	}
	c.Segmentation.FFmpegBinary = strings.TrimSpace(c.Segmentation.FFmpegBinary)
	if c.Segmentation.FFmpegBinary == "" {
		c.Segmentation.FFmpegBinary = defaultFFmpegBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
