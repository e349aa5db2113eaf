package ariarpc

import (
	"errors"
	"fmt"

	"github.com/creachadair/jrpc2"
)

var (
	// ErrDuplicateID is returned by Call when the correlation id is still
	// awaiting a response.
	ErrDuplicateID = errors.New("correlation id is already pending")
	// ErrTransportUnavailable is returned by Call before the connection is
	// open and when the transport rejects a frame.
	ErrTransportUnavailable = errors.New("transport unavailable")
	// ErrAlreadyConnected is returned when a channel is attached twice.
	ErrAlreadyConnected = errors.New("client is already connected")

	ErrInvalidID             = errors.New("id must be an integer or a string")
	ErrMalformed             = errors.New("malformed message")
	ErrMissingVersion        = errors.New("missing jsonrpc field")
	ErrUnresolvedCorrelation = errors.New("no pending call for id")
	ErrUnsupportedResult     = errors.New("no result decoder for method")
	ErrUnknownNotification   = errors.New("unknown notification method")
)

// RemoteError is an error payload reported by the daemon for one request.
// Method is empty when the id could not be resolved.
type RemoteError struct {
	ID      ID
	Method  string
	Code    jrpc2.Code
	Message string
}

func (e *RemoteError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("request %s failed: [%d] %s", e.ID, e.Code, e.Message)
	}
	return fmt.Sprintf("%s (id %s) failed: [%d] %s", e.Method, e.ID, e.Code, e.Message)
}
