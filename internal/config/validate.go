package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSubsetter(); err != nil {
		return err
	}
	if err := c.validateAcquisition(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.ScratchDir == "" {
		return errors.New("paths.scratch_dir must be set")
	}
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir must be set")
	}
	output := filepath.Clean(c.Paths.OutputDir)
	scratch := filepath.Clean(c.Paths.ScratchDir)
	if output == scratch {
		return errors.New("paths.output_dir and paths.scratch_dir must differ")
	}
	if within(output, scratch) || within(scratch, output) {
		return errors.New("paths.output_dir and paths.scratch_dir must not contain each other")
	}
	if c.History.Enabled && c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set when history is enabled")
	}
	return nil
}

func (c *Config) validateSubsetter() error {
	if c.Subsetter.Command == "" {
		return errors.New("subsetter.command must be set")
	}
	if !strings.Contains(c.Subsetter.Command, "{input}") || !strings.Contains(c.Subsetter.Command, "{output}") {
		return errors.New("subsetter.command must reference {input} and {output}")
	}
	if c.Subsetter.TimeoutSeconds < 0 {
		return errors.New("subsetter.timeout_seconds must be non-negative")
	}
	return nil
}

func (c *Config) validateAcquisition() error {
	if c.Acquisition.RequestTimeoutSeconds < 0 {
		return errors.New("acquisition.request_timeout_seconds must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be non-negative")
	}
	return nil
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
