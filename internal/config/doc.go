// Package config loads, normalizes, and validates tunepull configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves Spotify client credentials from
// the config file, the SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET environment
// variables, or a dotenv file, in that order.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical container names, and clear validation errors.
package config
