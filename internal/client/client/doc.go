// Package client contains the client-side building blocks of the calendar
// sync tool.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract for talking to the sync server (see the
//     Client interface): Ping, Login and Sync, plus access to the current
//     token pair so callers can persist it.
//  2. Two implementations of that contract. HTTPClient speaks the JSON HTTP
//     API and also uploads, lists and downloads database backups.
//     GRPCClient speaks the gRPC service using the shared JSON codec. Both
//     inject the application secret and the bearer token, and both refresh
//     an expired access token once before retrying the call.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite copy, applies the embedded goose migrations and hands out
//     repositories, optionally inside one transaction (Repositories.InTx),
//     and takes consistent file snapshots for backups (Repositories.Snapshot).
//
// # Error Handling
//
// Transport failures are reported as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized and ErrNotLoggedIn. Requests
// the server rejected as malformed wrap common.ErrorValidation.
package client
