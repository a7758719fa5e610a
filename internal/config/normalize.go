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
	c.normalizeSubsetter()
	c.normalizeAcquisition()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.source_dir", &c.Paths.SourceDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.scratch_dir", &c.Paths.ScratchDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.catalogue", &c.Paths.Catalogue},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeSubsetter() {
	c.Subsetter.Command = strings.TrimSpace(c.Subsetter.Command)
	if c.Subsetter.Command == "" {
		if value, ok := os.LookupEnv("WEBFONTS_SUBSETTER"); ok && strings.TrimSpace(value) != "" {
			c.Subsetter.Command = strings.TrimSpace(value)
		} else {
			c.Subsetter.Command = DefaultSubsetterCommand
		}
	}
}

func (c *Config) normalizeAcquisition() {
	c.Acquisition.ArchiveTool = strings.TrimSpace(c.Acquisition.ArchiveTool)
	if c.Acquisition.ArchiveTool == "" {
		c.Acquisition.ArchiveTool = defaultArchiveTool
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "pretty", "text":
		format = "console"
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = "info"
	}
	if level == "warning" {
		level = "warn"
	}
	c.Logging.Level = level
}
