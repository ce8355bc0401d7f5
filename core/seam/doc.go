// Package seam is a client for the lock provider's access-code API.
//
// It covers the four calls the reconciliation engine needs: list the codes on a
// device, create a time-bound code, move a code's window, and delete a code. Every
// call carries its own timeout. Non-2xx answers surface as *APIError; a 404 matches
// ErrNotFound so callers can treat deleting an absent code as done.
//
// Create is the only non-idempotent call: calling it twice programs two codes.
package seam
