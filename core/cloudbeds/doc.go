// Package cloudbeds is the reservation source client.
//
// It lists reservations by check-in window, page by page, fetches their full
// records in batches, and writes room-block annotations. Records come back
// undecoded; ParseReservation turns one into a validated Reservation or an
// error wrapping ErrMalformedRecord, so one bad record never fails a listing.
package cloudbeds
