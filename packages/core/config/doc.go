// Package config handles configuration loading and management for hookshot.
//
// It provides functionality for:
//   - Loading configuration from .hookshot.config.json and friends
//   - Default values matching a stock development server
//   - Merging file settings with command line overrides
package config
