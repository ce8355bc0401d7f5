// Package roomblocks programs a temporary code for out-of-service room blocks.
//
// A "created" notification for a matching block picks a random PIN, creates a
// code on the room's lock spanning the block's days and writes the PIN back to
// the block as its reason. A "deleted" notification removes the code and the
// binding. When the provider refuses the delete the binding is tombstoned and
// Sweep retries it on the next periodic run.
package roomblocks
