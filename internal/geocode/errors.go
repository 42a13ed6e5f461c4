package geocode

import (
	"errors"
	"fmt"
)

// ErrNoResult reports that the geocoding service answered successfully
// but found nothing for the query. Callers treat it as a cacheable
// failure, distinct from transport errors only in wording.
var ErrNoResult = errors.New("no geocoding result")

// LookupError represents a failed lookup against the geocoding service.
type LookupError struct {
	Query   string
	Message string
	Cause   error
}

func (e *LookupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("geocode lookup failed for %q: %s: %v", e.Query, e.Message, e.Cause)
	}
	return fmt.Sprintf("geocode lookup failed for %q: %s", e.Query, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Cause
}
