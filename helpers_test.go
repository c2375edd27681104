package restclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type transportFunc func(*http.Request) (*http.Response, error)

func (f transportFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

// respond returns a transport answering every request with status and body.
func respond(status int, body string, header ...string) Transport {
	return transportFunc(func(r *http.Request) (*http.Response, error) {
		h := make(http.Header)
		for i := 0; i+1 < len(header); i += 2 {
			h.Set(header[i], header[i+1])
		}
		return &http.Response{
			StatusCode: status,
			Header:     h,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    r,
		}, nil
	})
}

// completed returns a request that was sent through transport and has completed.
func completed(t *testing.T, transport Transport) *Request {
	t.Helper()
	r := New(http.MethodGet, "http://api.test/items", WithTransport(transport))
	require.NoError(t, r.Send(context.Background()).Wait(context.Background()))
	return r
}
