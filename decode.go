package restclient

import (
	"context"
	"net/http"
)

// decodeOp describes one terminal decode operation.
type decodeOp[T any] struct {
	name       string
	expectBody bool
	keepText   bool
	decode     func(*result[T], []byte)
	onFail     func(*Request, *result[T], *completion)
}

// run classifies the exchange, decodes the payload when classification
// succeeded, hands the response to callback and disposes of the request.
func (op *decodeOp[T]) run(r *Request, callback func(*Response[T])) *Response[T] {
	c := r.consume()

	res := classify[T](c, op.expectBody)
	if res.isError {
		if op.onFail != nil {
			op.onFail(r, res, c)
		}
	} else if op.decode != nil {
		op.decode(res, c.body)
	}

	resp := newResponse(c, res, op.keepText)
	if resp.IsError() {
		warn(r.ctx, r.logger, "response_error", "Response error", "rest:operation", op.name, "rest:status", c.status, "rest:error", resp.Err.Message, "rest:url", c.url)
		r.recorder.ObserveDecode(op.name, resp.Err.Kind.String())
	} else {
		r.recorder.ObserveDecode(op.name, "success")
	}

	if callback != nil {
		callback(resp)
	}
	r.dispose()
	return resp
}

// DecodeObject parses the response body as a JSON object of type T.
func DecodeObject[T any](r *Request, callback func(*Response[T])) *Response[T] {
	op := &decodeOp[T]{
		name:       "object",
		expectBody: true,
		keepText:   true,
		decode:     decodeObject[T],
	}
	return op.run(r, callback)
}

// DecodeArray parses the response body as a JSON array of T.
func DecodeArray[T any](r *Request, callback func(*Response[[]T])) *Response[[]T] {
	op := &decodeOp[[]T]{
		name:       "array",
		expectBody: true,
		keepText:   true,
		decode:     decodeArray[T],
	}
	return op.run(r, callback)
}

// DecodeNestedArray parses a JSON object holding an array of T and a total
// count, located by the names in fields. Empty names default to
// DefaultNestedFields.
func DecodeNestedArray[T any](r *Request, fields NestedFields, callback func(*Response[NestedResults[T]])) *Response[NestedResults[T]] {
	fields = fields.withDefaults()
	op := &decodeOp[NestedResults[T]]{
		name:       "nested_array",
		expectBody: true,
		keepText:   true,
		decode: func(res *result[NestedResults[T]], body []byte) {
			decodeNested(res, body, fields)
		},
	}
	return op.run(r, callback)
}

// DecodeXML parses the response body as XML into T. A 403 response is
// reported as KindAuth rather than a plain status error.
func DecodeXML[T any](r *Request, callback func(*Response[T])) *Response[T] {
	op := &decodeOp[T]{
		name:       "xml",
		expectBody: true,
		keepText:   true,
		decode:     decodeXML[T],
		onFail:     authFailure[T],
	}
	return op.run(r, callback)
}

func authFailure[T any](r *Request, res *result[T], c *completion) {
	if res.kind != KindStatus || res.status != http.StatusForbidden {
		return
	}
	warn(r.ctx, r.logger, "auth_failed", "Authentication Failed", "rest:url", c.url, "rest:body", string(c.body))
	res.fail(KindAuth, "Authentication failed: "+res.message, res.cause)
}

// DecodeText returns the response body as text.
func (r *Request) DecodeText(callback func(*Response[string])) *Response[string] {
	op := &decodeOp[string]{
		name:       "text",
		expectBody: true,
		keepText:   true,
		decode:     decodeText,
	}
	return op.run(r, callback)
}

// DecodeBytes returns the raw response body. An empty body is not an error.
func (r *Request) DecodeBytes(callback func(*Response[[]byte])) *Response[[]byte] {
	op := &decodeOp[[]byte]{
		name: "bytes",
		decode: func(res *result[[]byte], body []byte) {
			if body == nil {
				body = []byte{}
			}
			res.data = body
		},
	}
	return op.run(r, callback)
}

// Result only checks the response status. The body, possibly empty, is
// returned as text.
func (r *Request) Result(callback func(*Response[string])) *Response[string] {
	op := &decodeOp[string]{
		name:     "result",
		keepText: true,
		decode:   decodeText,
	}
	return op.run(r, callback)
}

func decodeText(res *result[string], body []byte) {
	res.data = string(body)
}

// As builds a request from b, sends it, waits for completion and decodes the
// body as a JSON object of type T.
func As[T any](ctx context.Context, b *Builder, opts ...Option) *Response[T] {
	r := NewRequest(b, opts...)
	<-r.Send(ctx).Done()
	return DecodeObject[T](r, nil)
}
