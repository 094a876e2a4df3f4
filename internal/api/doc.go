// Package api defines wire-format types and converters for the IPC layer.
// It translates internal queue, meeting, and workflow models into
// transport-friendly DTOs that the CLI renders without coupling to storage
// types.
//
// # Key Types
//
// Job: transport representation of a queue job with progress and error text.
//
// Meeting: meeting record with analysis output, tasks, and related jobs.
//
// WorkflowStatus: running/draining state, queue stats, and the current job.
//
// # Converters
//
// FromJob, FromMeeting, FromPerson, FromTask, FromStatusSummary.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status, queue.Kind) are
// exposed as lowercase strings. Timestamps use RFC3339 with milliseconds.
package api
