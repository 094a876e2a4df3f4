// Package analysis defines the contract between the queue engine and the
// service that turns a meeting recording or transcript into structured
// results, plus an implementation backed by the OpenRouter chat API.
//
// An Analyzer receives a Request describing the meeting and returns a
// Result with transcript segments, a summary, decisions, and proposed tasks.
// Progress callbacks are advisory; callers must tolerate zero, repeated, or
// out-of-order reports.
package analysis
