// Package history records fetch batches and their per-record outcomes in a
// SQLite database under the state directory.
//
// Runs are identified by UUIDs. Begin inserts an open run before any record
// is processed; Finish stores the results and tallies. A run that was never
// finished (for example after a crash) stays listed with no finish time.
package history
