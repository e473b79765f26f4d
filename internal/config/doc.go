// Package config loads DropDNA settings from a TOML file with environment
// fallbacks for secrets and paths.
package config
