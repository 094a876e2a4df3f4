// Package services defines shared utilities consumed by the queue engine and
// its external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, subject IDs, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so configuration,
//     analysis, mutation and store failures can be told apart with errors.Is.
package services
