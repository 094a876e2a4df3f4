// Package ipc exposes the daemon over JSON-RPC on a Unix domain socket.
//
// Server registers a single "Minutes" service whose methods wrap the daemon
// facade; Client offers typed helpers for each method. Payloads reuse the DTOs
// from package api. Errors cross the wire as plain strings, so callers match
// on message text rather than error markers.
package ipc
