// Package meetings persists meeting records, people and derived tasks in a
// SQLite database, and applies analysis results to them.
//
// Store doubles as the mutator the queue engine drives: AnalysisRequest
// builds adapter input from a stored meeting, ApplyResult merges a result and
// materializes tasks in one transaction, and SetProcessed reverts the flag
// when a job fails or is cancelled.
package meetings
