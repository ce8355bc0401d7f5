// Package utils provides conversion helpers for loosely typed payloads,
// where the reservation source sends the same field as a number in one
// response and a quoted string in another.
package utils
