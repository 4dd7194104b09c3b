// Package upag is a typed client for the Upag payments API.
//
//	client, err := upag.New("sk_test_...")
//	if err != nil {
//		return err
//	}
//	customer, err := client.Customers.Create(ctx, &upag.CustomerParams{
//		Email: "jane@example.com",
//		Name:  "Jane Doe",
//	})
//
// Every operation is a single round trip. Failures are returned as *Error
// with Type api_error, network_error or client_error.
package upag

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/upag-io/upag-go/audit"
	infrahttp "github.com/upag-io/upag-go/internal/infrastructure/http"
)

const (
	// Version is the library version reported in the User-Agent header.
	Version = "1.0.0"

	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.upag.io/v1"

	// DefaultTimeout bounds each request when Config.Timeout is zero.
	DefaultTimeout = infrahttp.DefaultTimeout
)

const userAgent = "upag-go/" + Version

// Config configures a Client. Only APIKey is required.
type Config struct {
	// APIKey authenticates every request as a bearer token.
	APIKey string

	// Timeout bounds each request. Zero means DefaultTimeout. Ignored when
	// HTTPClient is set.
	Timeout time.Duration

	// BaseURL overrides DefaultBaseURL, for sandboxes and tests.
	BaseURL string

	// HTTPClient replaces the pooled client built from Timeout.
	HTTPClient *http.Client

	// Transport replaces the pooled transport while keeping Timeout.
	// Ignored when HTTPClient is set.
	Transport http.RoundTripper

	// Logger receives request/response logs. Nil discards them.
	Logger *slog.Logger

	// LogRequestBody and LogResponseBody add sanitized bodies to the logs.
	LogRequestBody  bool
	LogResponseBody bool

	// MaxBodySize caps logged and audited bodies in bytes. Zero means 100KB.
	MaxBodySize int

	// RateLimit caps requests per second. Zero disables it.
	RateLimit float64

	// MaxConcurrentRequests caps in-flight requests. Zero disables it.
	MaxConcurrentRequests int

	// Metrics registers request counters and latency histograms when set.
	Metrics prometheus.Registerer

	// AuditRepository receives a sanitized record of every round trip.
	AuditRepository audit.Repository
}

// Client exposes the Upag resources. It is safe for concurrent use.
type Client struct {
	Customers      *CustomerService
	PaymentMethods *PaymentMethodService
	Payments       *PaymentService

	backend Backend
}

// New creates a client authenticated with apiKey and default settings.
func New(apiKey string) (*Client, error) {
	return NewWithConfig(Config{APIKey: apiKey})
}

// NewWithConfig creates a client from cfg. It fails with a *ConfigError,
// before any network activity, when cfg is invalid.
func NewWithConfig(cfg Config) (*Client, error) {
	backend, err := newHTTPBackend(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(backend), nil
}

// NewWithBackend wires the resources onto b, e.g. a test double.
func NewWithBackend(b Backend) *Client {
	return &Client{
		Customers:      &CustomerService{backend: b},
		PaymentMethods: &PaymentMethodService{backend: b},
		Payments:       &PaymentService{backend: b},
		backend:        b,
	}
}

// Close waits for pending audit writes. The client stays usable.
func (c *Client) Close() error {
	if closer, ok := c.backend.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
