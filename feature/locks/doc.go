// Package locks is the lock registry: which physical lock opens which room,
// which locks are shared by every guest, and which credential operates each.
//
// Locks are provisioned out of band from a YAML file (`locks import`) and are
// read-only to the reconcilers. Room locks carry a room id; common locks
// carry none.
package locks
