// Package config loads, normalizes, and validates waitline configuration.
//
// Configuration comes from a TOML file (default ~/.config/waitline/config.toml
// or ./waitline.toml) with a small set of environment overrides applied after
// parsing. Besides runtime settings, the file carries the one-time bootstrap
// payload: the station and operator tables seeded into a fresh database at
// first startup.
package config
