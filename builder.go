package restclient

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/KarpelesLab/pjson"
)

// Builder composes an outbound request: method, target URL, headers, query
// parameters and an optional body. It does no I/O. A Builder belongs to the
// caller until it is handed to NewRequest.
type Builder struct {
	method string
	base   string
	paths  []string
	header http.Header
	query  *QueryParams

	body        []byte
	contentType string
	hasBody     bool

	logger *slog.Logger
}

// NewBuilder returns a builder targeting base joined with paths.
func NewBuilder(method, base string, paths ...string) *Builder {
	if method == "" {
		method = http.MethodGet
	}
	return &Builder{
		method: method,
		base:   base,
		paths:  paths,
		header: make(http.Header),
	}
}

// SetMethod changes the HTTP method.
func (b *Builder) SetMethod(method string) *Builder {
	b.method = method
	return b
}

// Method returns the HTTP method.
func (b *Builder) Method() string {
	return b.method
}

// SetLogger sets the logger used for construction warnings.
func (b *Builder) SetLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// AddHeader sets a header, replacing any previous value for key.
func (b *Builder) AddHeader(key, value string) *Builder {
	b.header.Set(key, value)
	return b
}

// AddHeaders sets each header in headers.
func (b *Builder) AddHeaders(headers map[string]string) *Builder {
	for k, v := range headers {
		b.AddHeader(k, v)
	}
	return b
}

// Header returns a copy of the configured headers.
func (b *Builder) Header() http.Header {
	return b.header.Clone()
}

// SetBody sets the request body. A body can only be set once, later calls log
// a warning and leave the first body in place.
func (b *Builder) SetBody(data []byte, contentType string) *Builder {
	if b.hasBody {
		warn(context.Background(), b.logger, "body_already_set", "Request body can only be set once", "rest:content_type", contentType)
		return b
	}
	b.body = data
	b.contentType = contentType
	b.hasBody = true
	return b
}

// SetBodyText sets a text body. An empty contentType means ContentTypeText.
func (b *Builder) SetBodyText(text, contentType string) *Builder {
	if contentType == "" {
		contentType = ContentTypeText
	}
	return b.SetBody([]byte(text), contentType)
}

// SetBodyJSON encodes v as JSON and sets it as body. Strings are sent as is,
// and are assumed to already hold JSON.
func (b *Builder) SetBodyJSON(v any) error {
	if s, ok := v.(string); ok {
		b.SetBodyText(s, ContentTypeJSON)
		return nil
	}
	data, err := pjson.Marshal(v)
	if err != nil {
		return err
	}
	b.SetBody(data, ContentTypeJSON)
	return nil
}

// Body returns the body and its content type, if any.
func (b *Builder) Body() ([]byte, string, bool) {
	return b.body, b.contentType, b.hasBody
}

// SetQueryParams attaches q, replacing (with a warning) any previous set.
func (b *Builder) SetQueryParams(q *QueryParams) *Builder {
	if b.query != nil {
		warn(context.Background(), b.logger, "query_params_replaced", "Replacing previous query params")
	}
	b.query = q
	return b
}

// AddQueryParam adds a single query parameter, creating the set if needed.
func (b *Builder) AddQueryParam(key, value string) error {
	if b.query == nil {
		b.query = NewQueryParams()
	}
	return b.query.Add(key, value)
}

// QueryParams returns the attached parameters, possibly nil.
func (b *Builder) QueryParams() *QueryParams {
	return b.query
}

// URL returns the full target URL including the query string.
func (b *Builder) URL() string {
	return BuildURL(b.base, b.query, b.paths...)
}
