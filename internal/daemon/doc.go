// Package daemon coordinates the long-running minutes process: it enforces
// single-instance execution with a file lock, recovers interrupted jobs on
// start, runs the workflow manager, and exposes the operations the IPC layer
// serves.
//
// Daemon does not own the queue or record stores; the caller opens them and
// closes them after Close returns.
package daemon
