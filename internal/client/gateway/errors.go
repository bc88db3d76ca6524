package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies remote failures
type Kind string

const (
	KindNotAuthenticated Kind = "not_authenticated"
	KindNotFound         Kind = "not_found"
	KindNetwork          Kind = "network"
	KindTimeout          Kind = "timeout"
	KindRejected         Kind = "rejected"
)

// Sentinels matched by errors.Is against a *RemoteError of the same kind
var (
	ErrNotAuthenticated = errors.New("remote: not authenticated")
	ErrNotFound         = errors.New("remote: not found")
	ErrNetwork          = errors.New("remote: network failure")
	ErrTimeout          = errors.New("remote: timeout")
	ErrRejected         = errors.New("remote: rejected")
)

var kindSentinels = map[Kind]error{
	KindNotAuthenticated: ErrNotAuthenticated,
	KindNotFound:         ErrNotFound,
	KindNetwork:          ErrNetwork,
	KindTimeout:          ErrTimeout,
	KindRejected:         ErrRejected,
}

// Retryable reports whether a later attempt may succeed without user action
// on the record. Not authenticated is retryable: signing in again fixes it.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindNotAuthenticated:
		return true
	default:
		return false
	}
}

// IsRetryableKind is Retryable for a stored kind string
func IsRetryableKind(kind string) bool {
	return Kind(kind).Retryable()
}

// RemoteError is returned by every Gateway call that fails
type RemoteError struct {
	Err        error  // transport error, if any
	Kind       Kind   // failure class
	Op         string // gateway operation
	Message    string // server supplied message
	StatusCode int    // HTTP status, 0 for transport failures
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("remote %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel
func (e *RemoteError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the kind of a remote error, empty for anything else
func KindOf(err error) Kind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsConflict reports a create for an id the remote store already has
func IsConflict(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindRejected && re.StatusCode == http.StatusConflict
}

// kindForStatus maps an HTTP status of a failed call to a kind
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindNotAuthenticated
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout
	case status == http.StatusTooManyRequests, status >= 500:
		return KindNetwork
	default:
		return KindRejected
	}
}
