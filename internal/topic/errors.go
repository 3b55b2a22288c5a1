package topic

import (
	"errors"
	"fmt"
)

// Fallback messages used when the remote does not supply one.
const (
	DefaultFetchMessage  = "Failed to fetch topics"
	DefaultSaveMessage   = "Failed to save topics"
	DefaultDeleteMessage = "Failed to delete topics"
)

// StatusError reports a non-2xx response from the remote collection.
// Message is the "message" field of the response body, if any.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote returned status %d", e.StatusCode)
}

// FetchError is returned when the collection could not be read: transport
// failure, non-2xx status or a payload of unexpected shape.
type FetchError struct {
	Message    string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string { return e.Message }
func (e *FetchError) Unwrap() error { return e.Err }

// SaveError is returned when a batched upsert is rejected.
type SaveError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *SaveError) Error() string { return e.Message }
func (e *SaveError) Unwrap() error { return e.Err }

// DeleteError is returned when a batched delete is rejected.
type DeleteError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *DeleteError) Error() string { return e.Message }
func (e *DeleteError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsSaveError reports whether err is or wraps a *SaveError.
func IsSaveError(err error) bool {
	var se *SaveError
	return errors.As(err, &se)
}

// IsDeleteError reports whether err is or wraps a *DeleteError.
func IsDeleteError(err error) bool {
	var de *DeleteError
	return errors.As(err, &de)
}

// remoteMessage picks the server-provided message out of err, falling back
// to fallback. The status code is 0 when err carries no response.
func remoteMessage(err error, fallback string) (string, int) {
	var se *StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message, se.StatusCode
		}
		return fallback, se.StatusCode
	}
	return fallback, 0
}

func newFetchError(err error) *FetchError {
	msg, status := remoteMessage(err, DefaultFetchMessage)
	return &FetchError{Message: msg, StatusCode: status, Err: err}
}

func newSaveError(err error) *SaveError {
	msg, status := remoteMessage(err, DefaultSaveMessage)
	return &SaveError{Message: msg, StatusCode: status, Err: err}
}

func newDeleteError(err error) *DeleteError {
	msg, status := remoteMessage(err, DefaultDeleteMessage)
	return &DeleteError{Message: msg, StatusCode: status, Err: err}
}
