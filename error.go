package restclient

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
)

var (
	ErrDuplicateParam = errors.New("query parameter already set")

	// ErrNotSent, ErrNotCompleted and ErrDisposed are the panic values used
	// when a decode operation is called on a request in the wrong state.
	ErrNotSent      = errors.New("request has not been sent")
	ErrNotCompleted = errors.New("request has not completed yet")
	ErrDisposed     = errors.New("request has already been decoded and disposed")
)

// ErrorKind classifies a failed response.
type ErrorKind int

const (
	// KindStatus is a response with a status outside of the 2xx range.
	KindStatus ErrorKind = iota + 1
	// KindEmptyBody is a 2xx response that was expected to have a body.
	KindEmptyBody
	// KindDecode is a body that could not be parsed into the requested shape.
	KindDecode
	// KindAuth is a 403 response on the XML decode path.
	KindAuth
	// KindTransport is a request that never produced a response.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindEmptyBody:
		return "empty_body"
	case KindDecode:
		return "decode"
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error describes why a response could not be turned into a payload.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Type       string // target type name, for KindDecode
	Err        error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	return fmt.Sprintf("[rest] %s", e.Message)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	// check for various type of errors
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return os.ErrPermission
	case http.StatusNotFound:
		return fs.ErrNotExist
	default:
		return nil
	}
}

func statusMessage(status int) string {
	if txt := http.StatusText(status); txt != "" {
		return fmt.Sprintf("Response failed with status: %d %s", status, txt)
	}
	return fmt.Sprintf("Response failed with status: %d", status)
}

func isKind(err error, k ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// IsStatus reports whether err is a non-2xx status error.
func IsStatus(err error) bool { return isKind(err, KindStatus) }

// IsEmptyBody reports whether err is a 2xx response missing its body.
func IsEmptyBody(err error) bool { return isKind(err, KindEmptyBody) }

// IsDecode reports whether err is a payload parse failure.
func IsDecode(err error) bool { return isKind(err, KindDecode) }

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return isKind(err, KindAuth) }

// IsTransport reports whether err happened before any response was received.
func IsTransport(err error) bool { return isKind(err, KindTransport) }
