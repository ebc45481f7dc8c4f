package lesson

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/PheelaV/kr-notebook/internal/config"
	"github.com/PheelaV/kr-notebook/internal/logging"
)

const defaultSiteBase = "https://www.howtostudykorean.com"

// Scraper downloads lesson pages and recordings politely: one request at
// a time, an identifying user agent, and a delay between downloads.
type Scraper struct {
	cfg    *config.Config
	client *http.Client
	logger *slog.Logger
	base   string
	delay  time.Duration
}

// Option adjusts scraper construction.
type Option func(*Scraper)

// WithHTTPClient substitutes the HTTP client, primarily for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		s.client = client
	}
}

// WithSiteBase points the scraper at a different site root.
func WithSiteBase(base string) Option {
	return func(s *Scraper) {
		s.base = base
	}
}

// NewScraper builds a scraper from the loaded configuration.
func NewScraper(cfg *config.Config, logger *slog.Logger, opts ...Option) *Scraper {
	if logger == nil {
		logger = logging.NewNop()
	}
	base := cfg.Scraper.SiteBase
	if base == "" {
		base = defaultSiteBase
	}
	s := &Scraper{
		cfg:    cfg,
		client: &http.Client{},
		logger: logging.NewComponentLogger(logger, "scraper"),
		base:   base,
		delay:  time.Duration(cfg.Scraper.RequestDelayMS) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetchPage retrieves one HTML page within the configured page timeout.
func (s *Scraper) fetchPage(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Scraper.PageTimeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.Scraper.UserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	s.logger.Debug("fetched page", logging.String("url", url), logging.Int("bytes", len(body)))
	return body, nil
}

// download streams one recording to target, writing through a partial
// file so an interrupted transfer never leaves a truncated recording in
// place. It pauses for the configured delay after a successful transfer.
func (s *Scraper) download(ctx context.Context, url, target string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Scraper.DownloadTimeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", s.cfg.Scraper.UserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	partial := target + ".part"
	out, err := os.Create(partial)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(partial)
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(partial)
		return err
	}
	if err := os.Rename(partial, target); err != nil {
		_ = os.Remove(partial)
		return err
	}

	s.logger.Debug("downloaded recording", logging.String("url", url), logging.String("target", target))
	s.pause(ctx)
	return nil
}

func (s *Scraper) pause(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
