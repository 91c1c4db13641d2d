package syncerrors

import (
	"errors"
	"fmt"
)

// Remote errors
var (
	ErrTransport         = errors.New("transport failure")
	ErrRejected          = errors.New("request rejected by remote")
	ErrMalformedResponse = errors.New("malformed response")
	ErrLotNotFound       = errors.New("lot not found")
)

// engine errors
var (
	ErrSubmitInFlight     = errors.New("submission already in flight")
	ErrNotMounted         = errors.New("synchronizer not mounted")
	ErrInvalidAdminAction = errors.New("invalid admin action")
	ErrInvalidAmount      = errors.New("invalid amount")
)

// RejectionError is a well-formed refusal from the remote authority. Message
// is the server-provided text and must reach the user unmodified.
type RejectionError struct {
	Status  int
	Message string
}

// Reject builds a RejectionError for the given HTTP status and message.
func Reject(status int, message string) *RejectionError {
	return &RejectionError{Status: status, Message: message}
}

// RejectHTTP synthesizes the generic rejection used when an error body could not be parsed.
func RejectHTTP(status int, body string) *RejectionError {
	return &RejectionError{Status: status, Message: fmt.Sprintf("HTTP %d: %s", status, body)}
}

func (e *RejectionError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrRejected) hold for every RejectionError.
func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// RejectionMessage returns the verbatim server message if err is a rejection.
func RejectionMessage(err error) (string, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Message, true
	}
	return "", false
}
