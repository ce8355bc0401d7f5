// Package commoncodes gives every active reservation one access code on every
// common-area lock, keyed by (reservation, lock). Bindings persist the code
// reference; a binding without one marks a pair whose creation failed.
package commoncodes
