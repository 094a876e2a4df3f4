// Package main hosts the minutes CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC calls
// against the daemon: queue inspection and control, meeting and person
// records, and daemon lifecycle. It centralizes configuration resolution and
// socket discovery so subcommands only render results.
package main
