// Package sync orchestrates reconciliation runs.
//
// A run reads one snapshot of the reservation source, commits it, cleans up
// stays that left the window, then runs the per-room and common-area
// reconcilers and retries pending room block deletions. Runs are serialized;
// a run requested while another is in progress is refused. The scheduler
// triggers runs periodically and the handler exposes them over HTTP.
package sync
