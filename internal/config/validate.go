package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScraper(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScraper() error {
	return ensurePositiveMap(map[string]int{
		"scraper.page_timeout_seconds":     c.Scraper.PageTimeoutSeconds,
		"scraper.download_timeout_seconds": c.Scraper.DownloadTimeoutSeconds,
	})
}

func (c *Config) validateSegmentation() error {
	if err := ensurePositiveMap(map[string]int{
		"segmentation.min_silence_ms": c.Segmentation.MinSilenceMS,
		"segmentation.resolution_ms":  c.Segmentation.ResolutionMS,
		"segmentation.workers":        c.Segmentation.Workers,
	}); err != nil {
		return err
	}
	if c.Segmentation.SilenceThresholdDBFS >= 0 {
		return errors.New("segmentation.silence_threshold_dbfs must be negative (full-scale is 0 dBFS)")
	}
	if c.Segmentation.PaddingMS < 0 {
		return errors.New("segmentation.padding_ms must be >= 0")
	}
	if c.Segmentation.ManualPaddingMS < 0 {
		return errors.New("segmentation.manual_padding_ms must be >= 0")
	}
	if c.Segmentation.MinSilenceMS < c.Segmentation.ResolutionMS {
		return errors.New("segmentation.min_silence_ms must be at least segmentation.resolution_ms")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
