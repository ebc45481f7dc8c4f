package main

import (
	"strings"
	"sync"

	"github.com/PheelaV/kr-notebook/internal/carddb"
	"github.com/PheelaV/kr-notebook/internal/config"
)

// commandContext resolves the database location once per invocation.
// Configuration only loads when --db is not given, so pointing krdb at
// an explicit file works on machines with no config at all.
type commandContext struct {
	configFlag *string
	dbFlag     *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, dbFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		dbFlag:     dbFlag,
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
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) databasePath() (string, error) {
	if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
		return config.ExpandPath(*c.dbFlag)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.CardDB, nil
}

func (c *commandContext) openStore() (*carddb.Store, error) {
	path, err := c.databasePath()
	if err != nil {
		return nil, err
	}
	return carddb.Open(path)
}
