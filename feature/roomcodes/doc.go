// Package roomcodes keeps one access code per active stay on the stay's room
// lock.
//
// The PIN is the last digits of the reservation id and the window runs from
// the room check-in date at the property's check-in time to the room
// check-out date at its check-out time. A code already on the lock with the
// same PIN is adopted rather than duplicated.
package roomcodes
