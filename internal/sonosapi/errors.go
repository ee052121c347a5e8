package sonosapi

import "fmt"

// TimeoutError indicates the zones request timed out.
type TimeoutError struct {
	URL string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("sonos api %s timed out", e.URL)
}

// UnreachableError indicates the API could not be reached.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("sonos api %s unreachable: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// StatusError represents a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sonos api %s failed: http %d", e.URL, e.StatusCode)
}
