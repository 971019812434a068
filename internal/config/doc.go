// Package config loads, validates, and normalizes the TOML configuration
// shared by the mpacklog CLI and the log server.
package config
