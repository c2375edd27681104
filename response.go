package restclient

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/KarpelesLab/pjson"
)

// Response is the outcome of a decode operation. It is built once and never
// modified afterwards. Data is only meaningful when Err is nil, and Err is
// only set when the request failed.
type Response[T any] struct {
	StatusCode int
	URL        string
	Header     http.Header
	Body       string // response text, empty for byte payloads
	Data       T
	Err        *Error

	raw        []byte
	dataParsed any
	dataError  error
	dataParse  sync.Once
}

func newResponse[T any](c *completion, res *result[T], keepText bool) *Response[T] {
	resp := &Response[T]{
		StatusCode: c.status,
		URL:        c.url,
		Header:     c.header.Clone(),
		raw:        c.body,
	}
	if keepText || res.isError {
		resp.Body = string(c.body)
	}
	if res.isError {
		resp.Err = res.err()
	} else {
		resp.Data = res.data
	}
	return resp
}

// IsError returns true if the request failed at any stage.
func (r *Response[T]) IsError() bool {
	return r.Err != nil
}

// ErrorMessage returns the failure message, or an empty string.
func (r *Response[T]) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}

// Error returns Err as an error value, or nil on success. This avoids the
// typed nil pitfall of returning r.Err directly.
func (r *Response[T]) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// Value parses the raw body as generic JSON. The result is cached.
func (r *Response[T]) Value() (any, error) {
	r.dataParse.Do(func() {
		r.dataError = pjson.Unmarshal(r.raw, &r.dataParsed)
	})
	return r.dataParsed, r.dataError
}

// Get returns the JSON value found at the slash separated path v, for example
// "user/address/city". An empty path returns the whole document.
func (r *Response[T]) Get(v string) (any, error) {
	va := strings.Split(v, "/")
	cur, err := r.Value()
	if err != nil {
		return nil, err
	}

	for _, sub := range va {
		if sub == "" {
			continue
		}
		// we assume each sub will be an index in cur as a map
		curV, ok := cur.(map[string]any)
		if !ok {
			return nil, fs.ErrNotExist
		}
		cur, ok = curV[sub]
		if !ok {
			return nil, fs.ErrNotExist
		}
	}
	return cur, nil
}

// GetString is like Get but requires the value to be a string.
func (r *Response[T]) GetString(v string) (string, error) {
	res, err := r.Get(v)
	if err != nil {
		return "", err
	}
	str, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("unexpected type %T for string %s", res, v)
	}
	return str, nil
}
