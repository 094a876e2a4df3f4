// Package daemonrun hosts the daemon process: it wires configuration,
// logging, both SQLite stores, the analysis adapter, the background guard,
// notifications, and the IPC server, then blocks until SIGINT, SIGTERM, or a
// client stop request.
package daemonrun
