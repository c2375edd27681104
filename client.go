package restclient

import (
	"net/http"
	"time"
)

// Transport sends a request and returns its response. *http.Client satisfies it.
type Transport interface {
	Do(*http.Request) (*http.Response, error)
}

// DefaultHTTPTransport is the pooled transport used by DefaultHTTPClient.
var DefaultHTTPTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   50,
	MaxConnsPerHost:       200,
	IdleConnTimeout:       90 * time.Second,
	ResponseHeaderTimeout: 90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 5 * time.Second,
}

// DefaultHTTPClient is the client behind DefaultTransport.
var DefaultHTTPClient = &http.Client{
	Transport: DefaultHTTPTransport,
	Timeout:   120 * time.Second,
}

// DefaultTransport is used by requests created without WithTransport.
var DefaultTransport Transport = DefaultHTTPClient
