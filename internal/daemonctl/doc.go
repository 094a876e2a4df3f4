// Package daemonctl launches, probes, and stops the background daemon on
// behalf of the CLI. It talks to the daemon only through package ipc and
// falls back to reading the job database directly when the daemon is down.
package daemonctl
