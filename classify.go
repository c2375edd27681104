package restclient

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/KarpelesLab/webutil"
)

// result is the mutable state of a decode in progress. It never leaves the
// package: once classification and decoding are done it is turned into a
// Response.
type result[T any] struct {
	status  int
	isError bool
	kind    ErrorKind
	message string
	typ     string
	cause   error
	data    T
}

func (r *result[T]) fail(kind ErrorKind, msg string, cause error) {
	r.isError = true
	r.kind = kind
	r.message = msg
	r.cause = cause
}

func (r *result[T]) err() *Error {
	if !r.isError {
		return nil
	}
	return &Error{
		Kind:       r.kind,
		StatusCode: r.status,
		Message:    r.message,
		Type:       r.typ,
		Err:        r.cause,
	}
}

// classify turns a completed exchange into a verdict. Nothing past the status
// is looked at when the status is not 2xx. When expectBody is set, a 2xx
// response with an empty body is an error too.
func classify[T any](c *completion, expectBody bool) *result[T] {
	res := &result[T]{status: c.status}

	if c.err != nil {
		res.fail(KindTransport, fmt.Sprintf("Request failed: %s", c.err), c.err)
		return res
	}

	if c.status < 200 || c.status > 299 {
		res.fail(KindStatus, statusMessage(c.status), redirectCause(c))
		return res
	}

	if expectBody && len(c.body) == 0 {
		res.fail(KindEmptyBody, "Response has empty body", nil)
	}
	return res
}

// redirectCause returns a webutil redirect error for 3xx responses carrying a
// usable Location, so callers can errors.As it and follow the redirect.
func redirectCause(c *completion) error {
	if c.status < 300 || c.status > 399 || c.header == nil {
		return nil
	}
	loc := c.header.Get("Location")
	if loc == "" {
		return nil
	}
	target, err := url.Parse(loc)
	if err != nil {
		return nil
	}
	if c.url != "" {
		if base, err := url.Parse(c.url); err == nil {
			target = base.ResolveReference(target)
		}
	}
	return webutil.RedirectErrorCode(target, c.status)
}

// completion is what the transport delivered for a sent request.
type completion struct {
	url    string
	status int
	header http.Header
	body   []byte
	err    error
}
