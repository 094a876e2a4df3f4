// Package workflow hosts the queue engine that drains analysis jobs.
//
// The Manager claims the oldest pending job, holds a background execution
// lease while the analyzer runs, persists every progress report as it
// arrives, and applies the result through the meeting mutator. Adapter and
// mutation failures end the job in errored and revert the meeting's
// processed flag; job store failures propagate to the caller.
//
// Exactly one drain cycle runs at a time per Manager. The run loop wakes on
// Enqueue, re-arms after a short delay while pending work remains, and backs
// off after store errors. Recover must run once before Start so jobs left
// processing by a previous process return to pending.
package workflow
