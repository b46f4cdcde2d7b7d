package download

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is returned for a response outside 2xx that is not retried.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrChecksumMismatch is returned when a downloaded file does not match its manifest.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrQuery is returned when the EAGLE database rejects a query.
	ErrQuery = errors.New("query failed")
)

// StatusError carries the request URL and the status code of a failed response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s %d", e.URL, ErrUnexpectedStatus, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
