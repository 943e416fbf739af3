// Package config loads runtime configuration for the calendar CLI.
//
// Sources & precedence
//
//  1. Built-in defaults.
//  2. config.yaml in the configuration directory, written with commented
//     defaults on first run.
//  3. Environment variables prefixed with SCHEDSYNC_ (SCHEDSYNC_SERVER_URL,
//     SCHEDSYNC_APP_SECRET, ...).
//  4. Command-line flags bound by the caller, which override everything.
//
// # YAML schema
//
//	server_url: http://127.0.0.1:8080
//	transport: http           # or grpc
//	grpc_address: 127.0.0.1:50051
//	app_secret: ""
//	database: schedsync.db    # relative to the configuration directory
//	timeout: 15s
//	log_level: warn
//	log_file: ""
//
// Primary API
//
//   - type Config             holds the resolved values
//   - func Load(dir, flags)   builds a Config from the sources above
//   - func DefaultDir()       the per-user configuration directory
package config
