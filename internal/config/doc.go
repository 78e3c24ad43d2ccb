// Package config loads and validates the TOML configuration shared by the
// rejourney CLI and daemon.
//
// Load resolves the config path (explicit flag, ~/.config/rejourney/
// config.toml, or ./rejourney.toml), decodes it over repository defaults,
// expands ~ in every path field, and validates the result. Callers always
// receive a fully-normalized Config or an error; partially-applied
// configuration never escapes this package.
package config
