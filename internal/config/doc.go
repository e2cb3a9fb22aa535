// Package config loads, validates, and normalizes flickbridge configuration.
//
// Configuration lives in a TOML file (default ~/.config/flickbridge/
// config.toml). Load applies defaults, expands paths, and validates the
// result so the rest of the system can assume a usable Config.
package config
