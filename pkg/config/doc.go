// Package config loads the feedback form settings from YAML, a .env file and
// FEEDBACK_* environment variables, and validates them.
package config
