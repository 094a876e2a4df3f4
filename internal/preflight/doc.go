// Package preflight provides readiness checks for the filesystem paths and
// the analysis API that minutes depends on.
//
// The CLI "minutes preflight" command runs RunAll, which includes a live
// health check against the analysis API. The daemon runs RunLocal once at
// startup and logs failures without refusing to start, since a missing key
// only blocks new enqueues.
package preflight
