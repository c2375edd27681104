package restclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

type requestState int

const (
	stateConfigured requestState = iota
	stateSent
	stateDecoded
	stateDisposed
)

func (s requestState) String() string {
	switch s {
	case stateConfigured:
		return "configured"
	case stateSent:
		return "sent"
	case stateDecoded:
		return "decoded"
	case stateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Request is a single use REST call. It is configured, sent once with Send,
// and then consumed by exactly one decode operation (DecodeObject,
// DecodeArray, DecodeNestedArray, DecodeXML, DecodeText, DecodeBytes or
// Result). Decoding releases the request.
//
// Calling a decode operation on a request that was not sent, has not
// completed yet, or was already decoded is a programming error and panics
// with ErrNotSent, ErrNotCompleted or ErrDisposed respectively.
type Request struct {
	b         *Builder
	transport Transport
	recorder  *Recorder
	logger    *slog.Logger

	lk      sync.Mutex
	st      requestState
	ctx     context.Context
	pending *Pending
}

// Option configures a Request.
type Option func(*Request)

// WithTransport sets the transport used to send the request.
func WithTransport(t Transport) Option {
	return func(r *Request) {
		r.transport = t
	}
}

// WithRecorder enables metrics for the request.
func WithRecorder(rec *Recorder) Option {
	return func(r *Request) {
		r.recorder = rec
	}
}

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Request) {
		r.logger = l
	}
}

// NewRequest wraps b. The builder must not be used by the caller afterwards.
func NewRequest(b *Builder, opts ...Option) *Request {
	r := &Request{
		b:         b,
		transport: DefaultTransport,
		logger:    slog.Default(),
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	b.SetLogger(r.logger)
	return r
}

// New creates a request for the given method and URL.
func New(method, target string, opts ...Option) *Request {
	return NewRequest(NewBuilder(method, target), opts...)
}

// configurable returns true if the request still accepts changes.
func (r *Request) configurable(op string) bool {
	r.lk.Lock()
	defer r.lk.Unlock()

	if r.st == stateConfigured {
		return true
	}
	warn(r.ctx, r.logger, "mutation_after_send", "Request can no longer be modified", "rest:operation", op, "rest:state", r.st.String())
	return false
}

// AddHeader sets a request header, overwriting any previous value.
func (r *Request) AddHeader(key, value string) {
	if r.configurable("AddHeader") {
		r.b.AddHeader(key, value)
	}
}

// AddHeaders sets all given headers.
func (r *Request) AddHeaders(headers map[string]string) {
	if r.configurable("AddHeaders") {
		r.b.AddHeaders(headers)
	}
}

// SetBody sets the raw body. Only the first call has any effect.
func (r *Request) SetBody(data []byte, contentType string) {
	if r.configurable("SetBody") {
		r.b.SetBody(data, contentType)
	}
}

// SetBodyText sets a text body. Only the first body set has any effect.
func (r *Request) SetBodyText(text, contentType string) {
	if r.configurable("SetBodyText") {
		r.b.SetBodyText(text, contentType)
	}
}

// SetBodyJSON encodes v as the JSON body. Only the first body set has any effect.
func (r *Request) SetBodyJSON(v any) error {
	if !r.configurable("SetBodyJSON") {
		return nil
	}
	return r.b.SetBodyJSON(v)
}

// SetQueryParams attaches q, replacing previously attached parameters.
func (r *Request) SetQueryParams(q *QueryParams) {
	if r.configurable("SetQueryParams") {
		r.b.SetQueryParams(q)
	}
}

// AddQueryParam adds a query parameter. It fails if key is already present.
func (r *Request) AddQueryParam(key, value string) error {
	if !r.configurable("AddQueryParam") {
		return nil
	}
	return r.b.AddQueryParam(key, value)
}

// URL returns the URL the request targets, with its query string.
func (r *Request) URL() string {
	return r.b.URL()
}

// Method returns the request's HTTP method.
func (r *Request) Method() string {
	return r.b.Method()
}

// Pending is the handle returned by Send. It completes once the transport has
// delivered a response or failed.
type Pending struct {
	done chan struct{}
	c    *completion
}

// Done is closed when the response is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the request completes or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// completed returns the completion, or nil if the transport is still running.
func (p *Pending) completed() *completion {
	select {
	case <-p.done:
		return p.c
	default:
		return nil
	}
}

// Send dispatches the request and returns immediately. The exchange runs in
// the background and ctx bounds its lifetime. Credentials attached to ctx via
// Token.Use or ApiKey.Use are applied. Calling Send again returns the same
// handle.
func (r *Request) Send(ctx context.Context) *Pending {
	r.lk.Lock()
	defer r.lk.Unlock()

	if r.st != stateConfigured {
		warn(ctx, r.logger, "already_sent", "Request has already been sent", "rest:state", r.st.String())
		return r.pending
	}
	r.st = stateSent
	r.ctx = ctx

	p := &Pending{done: make(chan struct{})}
	r.pending = p

	httpReq, target, err := r.build(ctx)
	if err != nil {
		p.c = &completion{url: target, err: err}
		close(p.done)
		return p
	}

	go r.run(ctx, p, httpReq, target)
	return p
}

func (r *Request) build(ctx context.Context) (*http.Request, string, error) {
	b := r.b
	query := b.query.clone()

	var body []byte
	if b.hasBody {
		body = b.body
	}

	if k, ok := ctx.Value(apiKeyValue(0)).(*ApiKey); ok && k != nil {
		if query == nil {
			query = NewQueryParams()
		}
		u, err := url.Parse(BuildURL(b.base, nil, b.paths...))
		if err != nil {
			return nil, BuildURL(b.base, query, b.paths...), err
		}
		if err := k.applyParams(b.method, u, query, body); err != nil {
			return nil, BuildURL(b.base, query, b.paths...), err
		}
	}

	target := BuildURL(b.base, query, b.paths...)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, b.method, target, reader)
	if err != nil {
		return nil, target, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range b.header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	if b.hasBody && b.contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", b.contentType)
	}

	if t, ok := ctx.Value(tokenValue(0)).(*Token); ok && t != nil && httpReq.Header.Get("Authorization") == "" {
		httpReq.Header.Set("Authorization", t.authorization())
	}

	return httpReq, target, nil
}

func (r *Request) run(ctx context.Context, p *Pending, httpReq *http.Request, target string) {
	defer close(p.done)

	t := time.Now()
	c := &completion{url: target}

	resp, err := r.transport.Do(httpReq)
	if err != nil {
		c.err = err
	} else {
		defer resp.Body.Close()
		c.status = resp.StatusCode
		c.header = resp.Header
		c.body, err = io.ReadAll(resp.Body)
		if err != nil {
			c.err = fmt.Errorf("failed to read response body: %w", err)
		}
	}

	d := time.Since(t)
	r.recorder.ObserveSend(httpReq.Method, c.status, d)
	debugLog(ctx, r.logger, "debug_query", fmt.Sprintf("[rest] %s %s => %d (%s)", httpReq.Method, target, c.status, d), "rest:method", httpReq.Method, "rest:url", target, "rest:duration", d)

	p.c = c
}

// consume takes the completed exchange out of the request, moving it to the
// decoded state. It panics if the request cannot be decoded.
func (r *Request) consume() *completion {
	r.lk.Lock()
	defer r.lk.Unlock()

	switch r.st {
	case stateConfigured:
		panic(ErrNotSent)
	case stateDecoded, stateDisposed:
		panic(ErrDisposed)
	}
	c := r.pending.completed()
	if c == nil {
		panic(ErrNotCompleted)
	}
	r.st = stateDecoded
	return c
}

// dispose releases everything the request holds. The request cannot be used
// afterwards.
func (r *Request) dispose() {
	r.lk.Lock()
	defer r.lk.Unlock()

	r.st = stateDisposed
	r.b.body = nil
	r.b.query = nil
}
