// Package cli implements the schedsync command-line client.
//
// Each invocation loads configuration (flags, SCHEDSYNC_* environment
// variables, then config.yaml), opens the local SQLite copy, connects the
// configured transport and runs one command:
//
//   - login / logout / status / ping
//   - sync: push unsent changes and pull what changed since the watermark
//   - appointment add|list|show|edit|rm
//   - note add|list|show|edit|rm
//   - backup push|list (http transport only)
//
// Everything except sync, ping, login and backup works offline.
package cli
