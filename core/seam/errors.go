package seam

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched by APIError values carrying a 404 status.
var ErrNotFound = errors.New("seam: resource not found")

// APIError is returned when the provider answers with a non-2xx status.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("seam %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
