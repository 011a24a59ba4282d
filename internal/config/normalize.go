package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeLogging()
	c.normalizeSeeds()
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
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if value, ok := os.LookupEnv("WAITLINE_BIND"); ok && strings.TrimSpace(value) != "" {
		c.Server.Bind = strings.TrimSpace(value)
	}
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}

	c.Server.AdminToken = strings.TrimSpace(c.Server.AdminToken)
	if value, ok := os.LookupEnv("WAITLINE_ADMIN_TOKEN"); ok {
		c.Server.AdminToken = strings.TrimSpace(value)
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

	if value, ok := os.LookupEnv("WAITLINE_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeSeeds() {
	for i := range c.Stations {
		c.Stations[i].Name = strings.TrimSpace(c.Stations[i].Name)
		c.Stations[i].Description = strings.TrimSpace(c.Stations[i].Description)
		c.Stations[i].QueueGroupID = strings.TrimSpace(c.Stations[i].QueueGroupID)
	}
	for i := range c.Operators {
		c.Operators[i].Code = strings.TrimSpace(c.Operators[i].Code)
		c.Operators[i].Name = strings.TrimSpace(c.Operators[i].Name)
	}
}
