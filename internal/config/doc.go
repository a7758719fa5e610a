// Package config loads, normalizes, and validates webfonts configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files strictly, and honours the WEBFONTS_SUBSETTER
// environment fallback. The Config type centralizes the workspace roots, the
// subsetter command template, acquisition and history settings.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
