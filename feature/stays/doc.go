// Package stays builds the reservation snapshot and keeps the stay table in
// step with it.
//
// A run first reads the whole check-in window from the reservation source
// (Fetch). Nothing is written unless the read completes. The fresh stays are
// then upserted (Commit) without touching stored code references, and stays
// that left the window are cleaned up: remote code first, record second.
package stays
