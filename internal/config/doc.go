// Package config loads, normalizes, and validates statspub configuration from
// TOML files, providing defaults suitable for single-host operation.
package config
