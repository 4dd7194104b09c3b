package http

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole round trip when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// ClientConfig holds configuration for the underlying HTTP client.
type ClientConfig struct {
	Timeout         time.Duration
	Transport       http.RoundTripper
	MaxConnsPerHost int // 0 = 50
}

// NewClient creates an HTTP client with pooled keep-alive connections.
// If config is nil, uses defaults (30s timeout).
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = &ClientConfig{}
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := config.Transport
	if transport == nil {
		transport = newTransport(config.MaxConnsPerHost)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func newTransport(maxConnsPerHost int) *http.Transport {
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = 50
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   maxConnsPerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}
