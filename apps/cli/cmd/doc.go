// Package cmd implements the hookshot CLI commands using Cobra.
//
// The root command replays a webhook fixture against the development server
// and captures the resulting message:
//
//	hookshot <integration> <fixture> [--image-name 001.png] [--image-dir DIR] [-H JSON]
//
// Available subcommands:
//   - list: Show integrations and their fixtures
//   - validate: Resolve a fixture and its headers without sending anything
//   - serve: Run the development webhook receiver
//   - init: Write a starter config file
//   - version: Show hookshot version information
//
// Flags default from HOOKSHOT_* environment variables, which may come from
// the file named by --env-file.
package cmd
