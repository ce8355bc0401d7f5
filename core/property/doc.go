// Package property holds the rules that turn reservation data into access-code intent:
// the property's time zone, the fixed check-in and check-out clock times, the set of
// reservation statuses that should hold a code, and PIN derivation from reservation
// identifiers.
package property
