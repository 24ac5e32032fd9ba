package errors

import "errors"

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// ErrCorruptCredential marks a stored password hash that bcrypt cannot
// parse. It is a misconfiguration, not a user error, and must never be
// exposed to the client.
var ErrCorruptCredential = errors.New("stored credential is corrupt")

// ErrDeliveryFailed is returned by the synchronous single-send path when
// the mail transport reports a failure.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// IsNotFound reports whether err carries a 404 status code.
func IsNotFound(err error) bool {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode == 404
	}
	return false
}
