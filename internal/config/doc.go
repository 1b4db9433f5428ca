// Package config loads, normalizes, and validates studyroom configuration.
//
// It supplies defaults, expands tilde paths, reads TOML files, and honours
// environment fallbacks such as STUDYROOM_USER and MISTRAL_API_KEY so the
// TUI, the HTTP server, and the CLI all see the same sanitized settings.
package config
