package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/PheelaV/kr-notebook/internal/config"
	"github.com/PheelaV/kr-notebook/internal/lesson"
	"github.com/PheelaV/kr-notebook/internal/logging"
	"github.com/PheelaV/kr-notebook/internal/segment"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the shared file-backed logger. Command output goes
// to stdout; structured logging stays out of the way in the log file.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) newEngine() (*segment.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return segment.NewEngine(cfg, logger)
}

func (c *commandContext) newScraper() (*lesson.Scraper, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return lesson.NewScraper(cfg, logger), nil
}

// lessonTarget is one directory a segmentation run operates on. The name
// is the canonical lesson name, or "custom" for a --path override.
type lessonTarget struct {
	name string
	dir  string
}

// lessonTargets resolves the --lesson/--path flag pair into the lesson
// directories to process. A path override wins; "all" keeps every lesson
// that has been scraped.
func (c *commandContext) lessonTargets(selector, pathOverride string) ([]lessonTarget, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(pathOverride) != "" {
		dir, err := config.ExpandPath(pathOverride)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("lesson directory not found: %s", dir)
		}
		return []lessonTarget{{name: "custom", dir: dir}}, nil
	}

	switch strings.TrimSpace(selector) {
	case "", "all":
		var targets []lessonTarget
		for _, name := range lesson.Names() {
			dir := cfg.LessonDir(name)
			if _, err := os.Stat(dir); err == nil {
				targets = append(targets, lessonTarget{name: name, dir: dir})
			}
		}
		if len(targets) == 0 {
			return nil, fmt.Errorf("no lesson directories under %s (run 'krscrape scrape' first to download audio)", cfg.ScrapeRoot())
		}
		return targets, nil
	default:
		name, ok := canonicalLessonName(selector)
		if !ok {
			return nil, fmt.Errorf("unknown lesson %q (expected 1, 2, 3, or all)", selector)
		}
		target, err := c.lessonByName(name)
		if err != nil {
			return nil, err
		}
		return []lessonTarget{target}, nil
	}
}

// lessonByArg resolves a positional LESSON argument ("1" or "lesson1").
func (c *commandContext) lessonByArg(arg string) (lessonTarget, error) {
	name, ok := canonicalLessonName(arg)
	if !ok {
		return lessonTarget{}, fmt.Errorf("unknown lesson %q (expected 1, 2, or 3)", arg)
	}
	return c.lessonByName(name)
}

func (c *commandContext) lessonByName(name string) (lessonTarget, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return lessonTarget{}, err
	}
	dir := cfg.LessonDir(name)
	if _, err := os.Stat(dir); err != nil {
		return lessonTarget{}, fmt.Errorf("lesson directory not found: %s (run 'krscrape scrape %s' first)", dir, strings.TrimPrefix(name, "lesson"))
	}
	return lessonTarget{name: name, dir: dir}, nil
}

func canonicalLessonName(arg string) (string, bool) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	for _, name := range lesson.Names() {
		if arg == name || arg == strings.TrimPrefix(name, "lesson") {
			return name, true
		}
	}
	return "", false
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
